// Package upload streams sequences of records into S3 objects using the
// multipart upload protocol.
//
// The caller pushes records; the package encodes them, buffers parts,
// uploads each part once it reaches the minimum part size, and completes
// the upload on flush or close. Part numbers, entity tags and the upload
// lifecycle never leak to the caller.
//
// Uploader writes one bounded sequence into exactly one object.
// ForeverUploader writes an unbounded sequence across many objects,
// completing one and opening the next whenever a target size is reached.
//
// All remote calls go through the network.Client interface; retries,
// authentication and transport belong to the client, never to this package.
// On any failure the in-progress upload is aborted (best effort) so the
// service does not accumulate unreferenced uploads.
package upload
