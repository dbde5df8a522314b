package config

// CookieNameStruct groups the cookie names the quiz API reads and writes.
type CookieNameStruct struct {
	Session string
}

var CookieName = &CookieNameStruct{
	Session: "session_id",
}
