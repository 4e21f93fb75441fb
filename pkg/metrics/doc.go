/*

Package metrics provides the metric instruments of the shop backend:

-   the metrics registry holding named counters, gauges and histograms
-   the text snapshot of the registry in the Prometheus exposition format
-   an HTTP handler serving the snapshot for scraping
-   the periodic collection of the standard Go runtime and process metrics

It does NOT include the HTTP request instrumentation, which lives in
package middleware.


Ownership

There is no package-level registry. A single Registry is created at
process start and handed to every component updating or exporting
metrics. Tests create their own registries and can therefore run in
parallel.


Concurrency

Instruments are updated concurrently by request handlers while snapshots
are taken. Updates use the atomic implementations of the Prometheus client
library. Snapshots reflect a consistent state of each single series but not
necessarily across series.

*/
package metrics
