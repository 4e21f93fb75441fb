/*
Package server assembles the shop HTTP server.

All routes are served by a gin engine with the instrumentation handlers
installed in front of them:

  - GET /metrics returns the metrics snapshot.
  - /api/v1 serves the shop REST routes.
  - In production mode all other GET requests are answered from the
    frontend build directory. In development mode GET / answers with a
    liveness text.
*/
package server
