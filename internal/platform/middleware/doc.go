// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package middleware holds the chi middleware stack shared by every route.

The server installs it in this order:

	RequestID -> StructuredLogger -> Metrics -> PanicRecovery -> RateLimit -> CORS -> Authenticate

so that a recovered panic or a throttled client is still logged and counted
under its request ID. Every rejection is written as a standard error envelope.
*/
package middleware
