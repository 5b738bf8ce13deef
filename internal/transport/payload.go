package transport

import (
	"strings"

	"github.com/tidwall/gjson"
)

// UnknownUser is credited when a chat payload carries no username.
const UnknownUser = "Unknown"

// chatEvents are the Pusher event names that carry chat messages.
var chatEvents = map[string]bool{
	`App\Events\ChatMessageEvent`: true,
	"ChatMessageEvent":            true,
}

// ChannelName returns the Pusher channel for a chatroom ID.
func ChannelName(chatroomID string) string {
	return "chatrooms." + chatroomID + ".v2"
}

// frame is one Pusher protocol message.
type frame struct {
	Event   string
	Channel string
	Data    gjson.Result
}

// outFrame is the shape written back to Pusher.
type outFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// parseFrame splits a raw Pusher message. Pusher double-encodes data as a JSON
// string; both forms are accepted.
func parseFrame(raw []byte) frame {
	f := frame{
		Event:   gjson.GetBytes(raw, "event").String(),
		Channel: gjson.GetBytes(raw, "channel").String(),
		Data:    gjson.GetBytes(raw, "data"),
	}
	if f.Data.Type == gjson.String {
		if gjson.Valid(f.Data.Str) {
			f.Data = gjson.Parse(f.Data.Str)
		} else {
			f.Data = gjson.Result{}
		}
	}
	return f
}

// decodeChat extracts (text, user) from a chat event payload.
// Text comes from "content" or "message"; the username from "sender.username"
// or "user.username". Messages without text are dropped.
func decodeChat(data gjson.Result) (text, user string, ok bool) {
	if !data.IsObject() {
		return "", "", false
	}
	text = firstNonEmpty(data.Get("content").String(), data.Get("message").String())
	if strings.TrimSpace(text) == "" {
		return "", "", false
	}
	user = firstNonEmpty(data.Get("sender.username").String(), data.Get("user.username").String(), UnknownUser)
	return text, user, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
