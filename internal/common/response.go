package common

// Envelope is the body written by every successful response.
type Envelope struct {
	Success bool        `json:"success"`
	Count   *int        `json:"count,omitempty"`
	Token   string      `json:"token,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func Data(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

func List(data interface{}, count int) Envelope {
	return Envelope{Success: true, Count: &count, Data: data}
}

func Token(token string) Envelope {
	return Envelope{Success: true, Token: token}
}

// Empty is the `{}` payload returned after deletes and logout.
var Empty = struct{}{}
