// Package telegram is the control channel: it translates bot commands and
// inline keyboard callbacks into engine calls and renders engine state back
// into Telegram messages. The Bot type implements domain.Messenger so the
// engine can push status updates without knowing about Telegram.
package telegram
