package generate

// GenerateRequest - POST /generate body. Style and numberOfImages are
// loosely typed: clients send null, numbers and strings interchangeably and
// the coercion helpers absorb that.
type GenerateRequest struct {
	Email          string      `json:"email"`
	Style          interface{} `json:"style"`
	Photos         []string    `json:"photos"`
	NumberOfImages interface{} `json:"numberOfImages"`
}

// GenerateResponse - POST /generate reply
type GenerateResponse struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message,omitempty"`
	ImageURLs      []string `json:"imageUrls,omitempty"`
	Prompt         string   `json:"prompt,omitempty"`
	RequestedCount int      `json:"requestedCount,omitempty"`
	ActualCount    int      `json:"actualCount,omitempty"`
	JobID          string   `json:"jobId,omitempty"`
}
