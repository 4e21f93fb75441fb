package featureflag

var (
	// RouteLabelWithQuery controls whether the route label of HTTP request
	// metrics contains the query string of the request URL.
	// Each distinct query string creates separate metric series then.
	RouteLabelWithQuery = New("RouteLabelWithQuery", Bool(false))
)
