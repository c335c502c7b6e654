package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"tutor-bot/internal/config"
	"tutor-bot/internal/dialogue"
	"tutor-bot/internal/graph"
	"tutor-bot/internal/llm"
	"tutor-bot/internal/llm/deepseek"
	"tutor-bot/internal/llm/gemini"
	"tutor-bot/internal/store"
)

const turnTimeout = 90 * time.Second

func main() {
	sessionFlag := flag.String("session", "", "session id to resume (default: a new one)")
	engineFlag := flag.String("engine", "", "engine: gemini or deepseek (default: DEFAULT_ENGINE)")
	flag.Parse()

	cfg := config.Load()

	engines := &llm.Engines{
		Gemini: gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel),
	}
	if cfg.DeepseekAPIKey != "" {
		engines.Deepseek = deepseek.New(cfg.DeepseekAPIKey, cfg.DeepseekModel, cfg.DeepseekBaseURL)
	}

	name := cfg.DefaultEngine
	if strings.TrimSpace(*engineFlag) != "" {
		name = *engineFlag
	}
	eng, err := engines.Get(name)
	if err != nil {
		log.Fatal(err)
	}

	sessions, err := store.NewFile(cfg.SessionDir)
	if err != nil {
		log.Fatalf("session dir: %v", err)
	}

	sid := strings.TrimSpace(*sessionFlag)
	if sid == "" {
		sid = uuid.NewString()
	}

	ctx := context.Background()
	state, err := sessions.Load(ctx, sid)
	if errors.Is(err, store.ErrNotFound) {
		state = dialogue.NewGraphState()
	} else if err != nil {
		log.Fatalf("load session: %v", err)
	}

	tutor := graph.New(eng)

	fmt.Printf("会话 %s（引擎 %s/%s）\n", sid, eng.Name(), eng.GetModel())
	fmt.Println("输入 status 查看进度，quit 或 exit 退出。")

	// A fresh session gets the opener before the first prompt; a resumed
	// one picks up where it stopped.
	if state.ActiveItemID == "" {
		res := runTurn(ctx, tutor, state, "")
		save(ctx, sessions, sid, state)
		printTutor(res.Reply)
	} else if item := state.ActiveItem(); item != nil {
		fmt.Printf("继续上次的学习：%s\n", item.Goal)
	}

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			break
		}
		line := strings.TrimSpace(in.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			return
		case "status":
			printStatus(state)
			continue
		}

		res := runTurn(ctx, tutor, state, line)
		save(ctx, sessions, sid, state)
		if res.Done {
			printTutor("🎓 已经到达可迁移层级，本次学习完成！")
			return
		}
		printTutor(res.Reply)
	}
	if err := in.Err(); err != nil {
		log.Fatal(err)
	}
}

func runTurn(ctx context.Context, t *graph.Tutor, state *dialogue.GraphState, input string) graph.Result {
	ctx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()
	return t.RunTurn(ctx, state, input)
}

func save(ctx context.Context, st store.Store, sid string, state *dialogue.GraphState) {
	if err := st.Save(ctx, sid, state); err != nil {
		log.Printf("save session: %v", err)
	}
}

func printTutor(text string) {
	fmt.Println()
	fmt.Println("导师：" + text)
	fmt.Println()
}

func printStatus(state *dialogue.GraphState) {
	item := state.ActiveItem()
	if item == nil {
		fmt.Println("还没有进行中的学习。直接输入你想学的主题。")
		return
	}
	fmt.Printf("学习目标：%s\n", item.Goal)
	fmt.Printf("认知层级：%d/4（%s）\n", int(item.CurrentLevel), item.CurrentLevel)
	fmt.Printf("教学阶段：%s\n", dialogue.DetectPhase(item))
	fmt.Printf("下一步：%s\n", item.NextIntent)
	fmt.Printf("证据条数：%d/%d\n", len(item.RecentEvidence), dialogue.MaxEvidenceCount)
	if s := strings.TrimSpace(item.CognitiveState.Summary); s != "" {
		fmt.Printf("当前认知：%s\n", s)
	}
	if mp := strings.TrimSpace(item.CognitiveState.MissingParts); mp != "" {
		fmt.Printf("欠缺部分：%s\n", mp)
	}
}
