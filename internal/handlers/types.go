package handlers

import "time"

// ShortenBody is the JSON body of a shorten request. The field is optional in
// the schema so a missing URL gets the same message as an empty one. Unknown
// fields are ignored.
type ShortenBody struct {
	_           struct{} `additionalProperties:"true" json:"-"`
	OriginalURL string `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"originalUrl,omitempty"`
}

// ShortenRequest is the request for creating a short link.
type ShortenRequest struct {
	Body *ShortenBody
}

// LinkData describes a freshly created short link.
type LinkData struct {
	ShortID  string `doc:"The short id"       example:"aZ3kP9qL"                           json:"shortId"`
	LongURL  string `doc:"The original URL"   example:"https://example.com/very/long/path" json:"longUrl"`
	ShortURL string `doc:"The full short URL" example:"http://localhost:8888/aZ3kP9qL"     json:"shortUrl"`
}

// ShortenResponse is the response for a successfully created short link.
type ShortenResponse struct {
	Location string `doc:"The short URL" header:"Location"`
	Body     struct {
		Result
		Data LinkData `json:"data"`
	}
}

// RedirectRequest is the request for following a short link.
type RedirectRequest struct {
	ShortID string `doc:"The short id" example:"aZ3kP9qL" path:"shortId"`
}

// RedirectResponse carries no body, only the status and target.
type RedirectResponse struct {
	Status   int
	Location string `doc:"The original URL" header:"Location"`
}

// LinkItem is one entry of the link listing.
type LinkItem struct {
	ID        string    `doc:"Record handle, used for deletion" json:"id"`
	ShortID   string    `doc:"The short id"                     json:"shortId"`
	LongURL   string    `doc:"The original URL"                 json:"longUrl"`
	ShortURL  string    `doc:"The full short URL"               json:"shortUrl"`
	CreatedAt time.Time `doc:"Creation time"                    json:"createdAt"`
}

// ListResponse lists every link, newest first.
type ListResponse struct {
	Body struct {
		Result
		URLs []LinkItem `json:"urls"`
	}
}

// DeleteRequest identifies the record to delete.
type DeleteRequest struct {
	ID string `doc:"Record handle" path:"id"`
}

// DeleteResponse echoes the deleted handle.
type DeleteResponse struct {
	Body struct {
		Result
		ID string `json:"id"`
	}
}
