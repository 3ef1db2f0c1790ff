// Package devtools serves a reactor engine over HTTP for inspection and
// debugging.
//
// Routes:
//
//	GET  /healthz             liveness
//	GET  /state               plain snapshot of the state tree
//	GET  /getters             name, validity, evaluation count and deps per getter
//	GET  /getters/{name}      evaluate one getter
//	GET  /mutations           mutation names
//	POST /mutations/{name}    commit with the JSON body as payload
//	GET  /events              websocket stream of mutation events
//	GET  /metrics             Prometheus exposition, when a Gatherer is set
//
// Mounting:
//
//	srv := devtools.New(eng, devtools.Config{Gatherer: prometheus.DefaultGatherer})
//	defer srv.Close()
//	http.ListenAndServe(":7070", srv.Handler())
//
// The server owns access to the engine from then on; other goroutines must
// use Server.Do.
package devtools
