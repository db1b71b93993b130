package client

const (
	apiV1Prefix = "/api/v1"

	// Session endpoints
	endpointSession        = apiV1Prefix + "/sessions/%s"         // GET, DELETE
	endpointSessionHistory = apiV1Prefix + "/sessions/%s/history" // GET

	// Chat endpoints
	endpointChatCompletions = "/v1/chat/completions" // OpenAI-compatible endpoint
	endpointHeartbeat       = "/v1/heartbeat"        // SSE liveness stream
)
