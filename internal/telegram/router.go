// Package telegram adapts the tutoring dialogue to Telegram chats: one
// session per chat, commands for status and reset, and a per-chat engine
// switch.
package telegram

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tutor-bot/internal/dialogue"
	"tutor-bot/internal/graph"
	"tutor-bot/internal/llm"
	"tutor-bot/internal/llm/deepseek"
	"tutor-bot/internal/llm/gemini"
	"tutor-bot/internal/store"
	"tutor-bot/internal/util"
)

// turnTimeout bounds one orchestration pass including its model calls.
const turnTimeout = 90 * time.Second

// Engines are the configured providers the bot can switch between.
type Engines struct {
	Gemini   *gemini.Engine
	Deepseek *deepseek.Engine
}

type Router struct {
	Bot      *tgbotapi.BotAPI
	Engines  Engines
	Manager  *llm.Manager
	Sessions store.Store
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	cid := upd.Message.Chat.ID

	if upd.Message.IsCommand() {
		r.handleCommand(cid, upd.Message)
		return
	}
	if text := strings.TrimSpace(upd.Message.Text); text != "" {
		r.runTurn(cid, text)
	}
}

func sessionID(chatID int64) string {
	return "tg-" + strconv.FormatInt(chatID, 10)
}

// loadOrNew fetches the chat's session; a missing or expired one starts
// fresh.
func (r *Router) loadOrNew(ctx context.Context, sid string) (*dialogue.GraphState, error) {
	state, err := r.Sessions.Load(ctx, sid)
	if errors.Is(err, store.ErrNotFound) {
		return dialogue.NewGraphState(), nil
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (r *Router) runTurn(cid int64, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	sid := sessionID(cid)
	state, err := r.loadOrNew(ctx, sid)
	if err != nil {
		log.Printf("[bot] load session %s: %v", sid, err)
		r.send(cid, "存档读取失败，请稍后再试。")
		return
	}

	res := graph.New(r.Manager.Get(sid)).RunTurn(ctx, state, text)

	if err := r.Sessions.Save(ctx, sid, state); err != nil {
		log.Printf("[bot] save session %s: %v", sid, err)
	}

	if res.Done {
		r.send(cid, doneText(state))
		return
	}
	r.send(cid, res.Reply)
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, util.TruncateRunes(text, 3900))
	if _, err := r.Bot.Send(msg); err != nil {
		log.Printf("[bot] send to %d: %v", chatID, err)
	}
}
