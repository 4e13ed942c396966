// Package galleria issues short-lived signed URLs for the images of a photo
// gallery kept in a private object store.
//
// A gallery image is addressed by a logical reference (directory, filename,
// resolution) that maps onto the bucket layout
//
//	{directory}/optimized/{filename}   thumbnail variant
//	{directory}/original/{filename}    full resolution variant
//
// IssuerService resolves a reference to its object key, confirms the object
// exists and asks the configured ObjectStore for a signed read URL, which is
// optionally rewritten onto a CDN host. Nothing is cached; every call mints a
// new URL.
//
// # Key Components
//
//   - IssuerService: request-scoped issuance pipeline
//   - ObjectStore: existence check and URL signing for one bucket
//   - Registry: named drivers that open an ObjectStore (gcs, s3, filesystem)
//   - IssueError: failure tagged with the Stage it happened in
//   - SignatureVerifier: verifies natively signed URLs served by the local backend
//
// # Example Usage
//
//	registry := galleria.NewRegistry()
//	registry.Register(galleria.BackendGCS, galleria.DriverFunc(gcs.Open))
//
//	service := galleria.NewIssuerService(registry, galleria.ServiceConfig{Store: storeCfg})
//	signed, err := service.Issue(ctx, galleria.IssueRequest{
//	    Directory: "summer",
//	    Filename:  "beach.jpg",
//	})
//
// See the http package for the REST endpoint and the galleryclient package
// for the gallery state machine that consumes it.
package galleria
