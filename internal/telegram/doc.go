// Package telegram sends assignment changes to a Telegram chat through the
// Bot API. Messages use the API's HTML parse mode.
package telegram
