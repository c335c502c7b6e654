package telegram

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tutor-bot/internal/dialogue"
	"tutor-bot/internal/graph"
	"tutor-bot/internal/llm/deepseek"
	"tutor-bot/internal/llm/gemini"
	"tutor-bot/internal/store"
)

func (r *Router) handleCommand(cid int64, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		r.onStart(cid)
	case "status":
		r.onStatus(cid)
	case "reset":
		r.onReset(cid)
	case "engine":
		r.handleEngineCommand(cid, msg.Text)
	case "health":
		r.send(cid, "✅ OK")
	default:
		r.send(cid, "未知命令。可用：/start /status /reset /engine /health")
	}
}

// onStart opens a dialogue when none is running. An active one is resumed,
// not discarded.
func (r *Router) onStart(cid int64) {
	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	sid := sessionID(cid)
	state, err := r.loadOrNew(ctx, sid)
	if err != nil {
		log.Printf("[bot] load session %s: %v", sid, err)
		r.send(cid, "存档读取失败，请稍后再试。")
		return
	}
	if item := state.ActiveItem(); item != nil && item.Goal != dialogue.GoalAwaitingTopic {
		r.send(cid, "你已经在学习「"+item.Goal+"」。直接回复就能继续，想换目标用 /reset。")
		return
	}

	res := graph.New(r.Manager.Get(sid)).RunTurn(ctx, state, "")
	if err := r.Sessions.Save(ctx, sid, state); err != nil {
		log.Printf("[bot] save session %s: %v", sid, err)
	}
	r.send(cid, res.Reply)
}

func (r *Router) onStatus(cid int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	state, err := r.Sessions.Load(ctx, sessionID(cid))
	if errors.Is(err, store.ErrNotFound) {
		r.send(cid, "还没有进行中的学习。发送 /start，或者直接告诉我你想学什么。")
		return
	}
	if err != nil {
		log.Printf("[bot] load session %s: %v", sessionID(cid), err)
		r.send(cid, "存档读取失败，请稍后再试。")
		return
	}
	item := state.ActiveItem()
	if item == nil {
		r.send(cid, "还没有进行中的学习。发送 /start，或者直接告诉我你想学什么。")
		return
	}
	r.send(cid, formatStatus(item, state))
}

// onReset only asks; the destructive part waits for the inline confirmation.
func (r *Router) onReset(cid int64) {
	msg := tgbotapi.NewMessage(cid, "确定要放弃当前进度、重新开始吗？")
	msg.ReplyMarkup = makeResetConfirmKeyboard()
	if _, err := r.Bot.Send(msg); err != nil {
		log.Printf("[bot] send to %d: %v", cid, err)
	}
}

func (r *Router) handleEngineCommand(cid int64, cmd string) {
	args := strings.Fields(strings.TrimSpace(strings.TrimPrefix(cmd, "/engine")))
	sid := sessionID(cid)
	if len(args) == 0 {
		cur := r.Manager.Get(sid)
		r.send(cid, "当前引擎："+cur.Name()+"（"+cur.GetModel()+"）\n用法：\n/engine gemini [model]\n/engine deepseek [model]")
		return
	}
	name := strings.ToLower(args[0])
	var mdl string
	if len(args) > 1 {
		mdl = strings.TrimSpace(args[1])
	}

	switch name {
	case "gemini":
		eng := r.Engines.Gemini
		if eng == nil {
			r.send(cid, "❌ Gemini 未配置。")
			return
		}
		if mdl != "" {
			// A fresh engine keeps the model override local to this chat.
			eng = gemini.New(eng.APIKey, mdl)
		}
		r.Manager.Set(sid, eng)
		r.send(cid, "✅ 引擎：gemini（"+eng.GetModel()+"）")
	case "deepseek":
		eng := r.Engines.Deepseek
		if eng == nil {
			r.send(cid, "❌ DeepSeek 未配置。")
			return
		}
		if mdl != "" {
			eng = deepseek.New(eng.APIKey, mdl, eng.BaseURL)
		}
		r.Manager.Set(sid, eng)
		r.send(cid, "✅ 引擎：deepseek（"+eng.GetModel()+"）")
	default:
		r.send(cid, "未知引擎。可用：gemini | deepseek")
	}
}
