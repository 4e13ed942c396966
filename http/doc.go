// Package http serves the galleria API.
//
// # Routes
//
//	GET /api/signed-url?directory=<d>&filename=<f>&original=<true|false>
//	GET /api/images
//	GET /healthz
//	GET /objects/{bucket}/{key...}   (filesystem backend only)
//
// A signed-url request succeeds with {"signedUrl": "..."}. Failures carry
// {"error": "..."} plus "details" for store and unexpected failures; the
// status follows the stage of the failure (see StatusForStage).
//
// # Objects route
//
// When HandlerConfig.Objects is set, the router serves files of the local
// bucket. Every request passes AuthMiddleware, which verifies the native
// X-Stowry-* signature over the path below /objects:
//
//	store := keybackend.NewSecretStore(pairs)
//	verifier := galleria.NewSignatureVerifier(store)
//
//	handlerCfg := http.HandlerConfig{
//	    Gallery: http.GalleryManifest{Directory: "trip", Images: images},
//	    Objects: &http.ObjectsConfig{Bucket: "photos", Source: fsStore, Verifier: verifier},
//	}
//	handler := http.NewHandler(&handlerCfg, issuer)
//	http.ListenAndServe(":5708", handler.Router())
//
// # Middleware
//
// RequestLogger assigns request ids and writes one access log record per
// request. chi's Recoverer turns handler panics into 500 responses.
package http
