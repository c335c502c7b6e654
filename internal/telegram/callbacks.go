package telegram

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tutor-bot/internal/dialogue"
	"tutor-bot/internal/graph"
)

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID

	// Ack first so the client stops its spinner even if the action is slow.
	if _, err := r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("[bot] callback ack: %v", err)
	}

	switch cb.Data {
	case "reset_yes":
		r.onResetYes(cid, cb.Message.MessageID)
	case "reset_no":
		r.onResetNo(cid, cb.Message.MessageID)
	}
}

func (r *Router) onResetYes(cid int64, msgID int) {
	r.clearKeyboard(cid, msgID)

	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	sid := sessionID(cid)
	if err := r.Sessions.Delete(ctx, sid); err != nil {
		log.Printf("[bot] delete session %s: %v", sid, err)
		r.send(cid, "重置失败，请稍后再试。")
		return
	}

	state := dialogue.NewGraphState()
	res := graph.New(r.Manager.Get(sid)).RunTurn(ctx, state, "")
	if err := r.Sessions.Save(ctx, sid, state); err != nil {
		log.Printf("[bot] save session %s: %v", sid, err)
	}
	r.send(cid, res.Reply)
}

func (r *Router) onResetNo(cid int64, msgID int) {
	r.clearKeyboard(cid, msgID)
	r.send(cid, "好，继续刚才的学习。")
}

func (r *Router) clearKeyboard(cid int64, msgID int) {
	edit := tgbotapi.NewEditMessageReplyMarkup(cid, msgID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	if _, err := r.Bot.Send(edit); err != nil {
		log.Printf("[bot] clear keyboard: %v", err)
	}
}
