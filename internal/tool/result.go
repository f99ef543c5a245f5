package tool

import (
	"encoding/json"
	"fmt"
)

// Media is inline binary content returned alongside the text.
type Media struct {
	MIMEType string
	Data     []byte
}

// Result is the single shape every invocation produces: a displayable
// payload, or an error flag with a message.
type Result struct {
	InvocationID string
	IsError      bool
	Text         string
	Media        []Media
	// Data is structured output for hosts that consume it.
	Data any
}

func failure(format string, args ...any) Result {
	return Result{IsError: true, Text: fmt.Sprintf(format, args...)}
}

func failureText(msg string) Result {
	return Result{IsError: true, Text: msg}
}

func jsonResult(title string, body any) Result {
	out, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return Result{Text: fmt.Sprintf("%s: %v", title, body), Data: body}
	}
	return Result{Text: title + ":\n" + string(out), Data: body}
}
