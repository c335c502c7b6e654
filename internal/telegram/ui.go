package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tutor-bot/internal/dialogue"
)

func makeResetConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	yes := tgbotapi.NewInlineKeyboardButtonData("重新开始", "reset_yes")
	no := tgbotapi.NewInlineKeyboardButtonData("继续学习", "reset_no")
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(yes, no))
}

// formatStatus renders the active learning item for /status.
func formatStatus(item *dialogue.LearningItem, state *dialogue.GraphState) string {
	var b strings.Builder
	b.WriteString("📋 学习状态\n")
	fmt.Fprintf(&b, "学习目标：%s\n", item.Goal)
	fmt.Fprintf(&b, "认知层级：%d/4（%s）\n", int(item.CurrentLevel), item.CurrentLevel)
	fmt.Fprintf(&b, "教学阶段：%s\n", dialogue.DetectPhase(item))
	fmt.Fprintf(&b, "下一步：%s\n", item.NextIntent)
	fmt.Fprintf(&b, "证据条数：%d/%d\n", len(item.RecentEvidence), dialogue.MaxEvidenceCount)
	if s := strings.TrimSpace(item.CognitiveState.Summary); s != "" {
		fmt.Fprintf(&b, "当前认知：%s\n", s)
	}
	if mp := strings.TrimSpace(item.CognitiveState.MissingParts); mp != "" {
		fmt.Fprintf(&b, "欠缺部分：%s\n", mp)
	}
	fmt.Fprintf(&b, "对话轮数：%d", len(state.Messages))
	return b.String()
}

// doneText closes out a dialogue whose learner reached the top level.
func doneText(state *dialogue.GraphState) string {
	if item := state.ActiveItem(); item != nil && item.Goal != dialogue.GoalAwaitingTopic {
		return "🎓 「" + item.Goal + "」已经到达可迁移层级，本次学习完成！\n想学下一个目标就用 /reset 重新开始。"
	}
	return "本次学习已结束。用 /reset 可以重新开始。"
}
