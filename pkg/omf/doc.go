// Package omf implements the Open Mining Format (OMF) version 2 data model
// for geoscience and mining project data, together with a catalog service for
// storing packed projects behind pluggable repository and blob storage
// backends.
//
// A Project holds an ordered list of elements (PointSet, LineSet, Surface,
// TensorGridSurface, BlockModel, Composite). Elements carry attributes
// (numeric, vector, string, category) whose value arrays map onto the
// element's geometry at a named location such as vertices, faces or
// parent_blocks. Large numeric payloads are binary-backed: the JSON index
// references them by UUID and the bytes travel separately, either inside an
// .omf archive (see the omffile subpackage) or in a blob store.
//
// The catalog Service orchestrates project records, archive packing, uploads
// and downloads. Repository implementations (memory, Postgres) live under
// repo/, blob stores (memory, filesystem, S3) under storage/.
package omf
