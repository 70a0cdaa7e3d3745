// Package inspect serves the committed trees of a reconciler over HTTP.
//
// Register the server's observer with the reconciler and mount its handler:
//
//	srv := inspect.New(inspect.WithGatherer(registry))
//	r := fiber.New(host, sched, fiber.WithCommitObserver(srv.Observer()))
//	http.ListenAndServe(addr, srv)
//
// Routes:
//
//	GET /roots               mounted roots with their last commit
//	GET /roots/{id}          JSON snapshot of the committed tree (ETag aware)
//	GET /roots/{id}/commits  recent commit records, ?limit=N
//	GET /roots/{id}/stream   websocket: a snapshot, then one message per commit
//	GET /metrics             Prometheus metrics
//	GET /healthz             liveness
package inspect
