// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package supervisor provides process supervision for Cinematch using suture v4.

The supervisor tree organizes services into two layers:

	RootSupervisor ("cinematch")
	├── DataSupervisor ("data-layer")
	│   └── CatalogService (interval reload and file watch)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A reloader crash is restarted with backoff while the HTTP layer keeps
serving the last published catalog.

# Usage Example

	slogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewCatalogService(store, catalogCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Supervisor events (service panics, restarts, backoff) are logged through
sutureslog into the zerolog-backed slog handler from package logging.
*/
package supervisor
