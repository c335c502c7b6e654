// Package prompt holds the system instructions sent to the language-model
// collaborators and the rules for composing them per teaching phase.
package prompt

import (
	"fmt"
	"strings"

	"tutor-bot/internal/dialogue"
)

// ContextTurns bounds how much recent dialogue a guidance call sees.
const ContextTurns = 4

// Sampling temperatures. The topic-less opener runs hot so repeated starts
// show different example topics; everything after runs cool for a
// consistent pedagogical tone. JSON calls run at zero.
const (
	TempOpening float32 = 0.9
	TempGuide   float32 = 0.3
	TempJSON    float32 = 0
)

// ApologyMessage replaces the tutor's reply when guidance generation fails.
// The learner never sees the underlying error.
const ApologyMessage = "抱歉，我这边出了点问题。我们接着刚才的话题：你能把刚才的想法再说一遍吗？"

// SystemGoalExtract drives the goal-extraction collaborator.
const SystemGoalExtract = `你是学习目标提取模块。学习者会说出自己想学的东西。
把它提炼成一句简短的学习目标，以「理解」或「掌握」开头，不超过二十个字。
只返回 JSON：{"goal": "<学习目标>"}。JSON 之外的任何文字都是错误。`

// SystemAssess drives the cognitive-assessment collaborator. The label set
// here must stay in lockstep with the dialogue package vocabulary.
const SystemAssess = `你是认知状态评估模块。根据学习者的最新回答和当前学习状态，
判断学习者对学习目标的理解处于哪个状态。只能从以下五个标签中选择一个：
- too_vague：表达太模糊，看不出真实理解
- intuition_but_unclear：有直觉，但讲不清楚
- can_describe_with_structure：能够有条理地描述
- fully_structured：结构完整，解释严密
- transferable：能把理解迁移到新场景
不要打分，不要鼓励，只做判断。
只返回 JSON：{"cognitiveState": "<标签>", "reasoning": "<一句话理由>"}。JSON 之外的任何文字都是错误。`

// openerTemplate is the system instruction for the very first, topic-less
// turn.
const openerTemplate = `你是一位一对一导师。学习者还没有说想学什么。
用一句话问学习者想学什么，并给出两三个具体的例子降低开口门槛
（例如：二分查找、傅里叶变换、HTTP 缓存）。
只问这一个问题，不要说别的。`

// phaseTemplates are the per-phase behavioral constraints on the guidance
// collaborator. Completeness over the phase set is checked at startup.
var phaseTemplates = map[dialogue.TeachingPhase]string{
	dialogue.PhaseInfoCollection: `现在是信息收集阶段。禁止开放式提问。
只问一个封闭式问题，并附上一个具体例子帮学习者理解问题本身。
一次只问一个问题，不要解释任何知识。`,

	dialogue.PhaseUnderstanding: `现在是理解摸底阶段。禁止讲解任何知识，禁止纠正。
用一个开放式问题，请学习者用自己的话说出目前对这个目标的理解。
不要评价对错。`,

	dialogue.PhaseClarification: `现在是澄清阶段。学习者有直觉但讲不清楚。
针对学习者表述里最模糊的一处，提出一个边界问题或一个反例，
迫使学习者把直觉说清楚。不要替学习者回答。`,

	dialogue.PhaseStructured: `现在是结构化阶段。引导学习者把已有的理解组织成结构：
步骤、前提条件、因果关系。指出欠缺的那部分，请学习者自己补全，
不要替学习者总结。`,

	dialogue.PhaseTransfer: `现在是迁移阶段。设计一个学习者没有见过的新场景，
请学习者把学到的内容应用上去。场景要具体，不要重复之前出现过的例子。`,
}

func init() {
	for _, ph := range dialogue.AllPhases() {
		if _, ok := phaseTemplates[ph]; !ok {
			panic(fmt.Sprintf("prompt: no template for phase %q", ph))
		}
	}
}

// TemplateFor returns the guidance template for a phase.
func TemplateFor(phase dialogue.TeachingPhase) string {
	return phaseTemplates[phase]
}

// Guide is one composed guidance instruction.
type Guide struct {
	System      string
	Temperature float32
	Opening     bool
}

// BuildGuide composes the system instruction for the item's current
// position: the opener while no topic exists, otherwise the phase template
// prefixed with a header describing the learner.
func BuildGuide(item *dialogue.LearningItem) Guide {
	if item.Goal == dialogue.GoalAwaitingTopic {
		return Guide{System: openerTemplate, Temperature: TempOpening, Opening: true}
	}
	phase := dialogue.DetectPhase(item)
	return Guide{
		System:      header(item) + "\n" + phaseTemplates[phase],
		Temperature: TempGuide,
	}
}

// header states the current goal, the cognitive summary and what is still
// missing, so the guidance model sees the same picture the state machine
// does.
func header(item *dialogue.LearningItem) string {
	var b strings.Builder
	b.WriteString("你是一位一对一导师。\n")
	fmt.Fprintf(&b, "学习目标：%s\n", item.Goal)
	if s := strings.TrimSpace(item.CognitiveState.Summary); s != "" {
		fmt.Fprintf(&b, "当前认知状态：%s\n", s)
	}
	if mp := strings.TrimSpace(item.CognitiveState.MissingParts); mp != "" {
		fmt.Fprintf(&b, "欠缺部分：%s\n", mp)
	}
	return b.String()
}
