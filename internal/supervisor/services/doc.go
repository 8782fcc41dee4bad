// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package services provides suture.Service wrappers for Cinematch components.

Each wrapper translates a component lifecycle into suture's context-aware
Serve pattern and implements fmt.Stringer so supervisor events name it.

HTTP Server (HTTPServerService):
  - Wraps *http.Server, converting ListenAndServe to Serve
  - Graceful Shutdown with a configurable drain timeout

Catalog Reloader (CatalogService):
  - Reloads the catalog on a fixed interval
  - Optionally watches the catalog file (koanf file provider, fsnotify) and
    reloads after writes settle
  - Failed reloads keep the published catalog and are logged
*/
package services
