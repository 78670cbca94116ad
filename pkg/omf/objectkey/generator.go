// Package objectkey provides object key generation strategies for project
// archives stored in blob backends.
package objectkey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Generator defines the interface for archive key generation strategies
type Generator interface {
	// GenerateKey creates an object key for storage backends
	GenerateKey(projectID uuid.UUID, name string) string
}

// FlatGenerator places every archive directly under a single prefix
// Structure: projects/{uuid}.omf
type FlatGenerator struct{}

func NewFlatGenerator() *FlatGenerator {
	return &FlatGenerator{}
}

func (g *FlatGenerator) GenerateKey(projectID uuid.UUID, name string) string {
	return fmt.Sprintf("projects/%s.omf", projectID)
}

// ShardedGenerator provides Git-style sharded storage
// Structure: projects/ab/cd1234ef5678.omf
type ShardedGenerator struct {
	// ShardLength controls how many characters to use for sharding (default: 2)
	ShardLength int
}

func NewShardedGenerator() *ShardedGenerator {
	return &ShardedGenerator{
		ShardLength: 2,
	}
}

func (g *ShardedGenerator) GenerateKey(projectID uuid.UUID, name string) string {
	idStr := strings.ReplaceAll(projectID.String(), "-", "")

	shardLength := g.ShardLength
	if shardLength <= 0 || shardLength >= len(idStr) {
		shardLength = 2
	}

	shardDir := idStr[:shardLength]
	remaining := idStr[shardLength:]

	return fmt.Sprintf("projects/%s/%s.omf", shardDir, remaining)
}

// NamedGenerator keeps the project name visible in the key for browsable
// buckets
// Structure: projects/ab/cd1234ef5678_open_pit_survey.omf
type NamedGenerator struct {
	BaseGenerator *ShardedGenerator
}

func NewNamedGenerator() *NamedGenerator {
	return &NamedGenerator{
		BaseGenerator: NewShardedGenerator(),
	}
}

func (g *NamedGenerator) GenerateKey(projectID uuid.UUID, name string) string {
	key := g.BaseGenerator.GenerateKey(projectID, name)
	if name == "" {
		return key
	}

	base := strings.TrimSuffix(key, ".omf")
	return fmt.Sprintf("%s_%s.omf", base, sanitizeName(name))
}

// CustomFuncGenerator allows users to provide their own key generation function
type CustomFuncGenerator struct {
	GenerateFunc func(projectID uuid.UUID, name string) string
}

func NewCustomFuncGenerator(fn func(projectID uuid.UUID, name string) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{
		GenerateFunc: fn,
	}
}

func (g *CustomFuncGenerator) GenerateKey(projectID uuid.UUID, name string) string {
	return g.GenerateFunc(projectID, name)
}

// NewRecommendedGenerator returns the recommended generator for new
// installations
func NewRecommendedGenerator() Generator {
	return NewShardedGenerator()
}

func sanitizeName(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return strings.ToLower(replacer.Replace(name))
}
