package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"poultry-diagnose-be/internal/dto"

	"github.com/fatih/color"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

type turn struct {
	Query    string
	Entities []string
}

// the three-turn conversation used to smoke-test a running server
var conversation = []turn{
	{Query: "鸡咳嗽，还流鼻涕", Entities: []string{"咳嗽", "流鼻涕"}},
	{Query: "眼睑水肿，一直流泪", Entities: []string{"眼睑水肿", "流泪"}},
	{Query: "鸡冠也肿了", Entities: []string{"鸡冠肿胀"}},
}

func main() {
	baseURL := flag.String("url", "http://localhost:8000/api", "API base URL")
	userID := flag.String("user", "simulator", "user id sent with every turn")
	flag.Parse()

	sessionID := uuid.NewString()
	client := resty.New()
	client.SetBaseURL(*baseURL)
	client.SetTimeout(30 * time.Second)
	client.SetHeader("Content-Type", "application/json")

	color.Cyan("🐔 Poultry diagnosis simulation (session %s)\n", sessionID)

	for i, t := range conversation {
		color.Yellow("\n[TURN %d] USER: %s  entities=%v", i+1, t.Query, t.Entities)

		var res dto.DiagnoseResponse
		start := time.Now()
		resp, err := client.R().
			SetBody(dto.DiagnoseRequest{
				UserId:    *userID,
				SessionId: sessionID,
				Query:     t.Query,
				Entities:  t.Entities,
			}).
			SetResult(&res).
			Post("/chat/diagnose")
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		if resp.IsError() {
			color.Red("Status: %s\n%s", resp.Status(), resp.String())
			os.Exit(1)
		}

		color.Green("BOT (%v, %s): %s", time.Since(start).Round(time.Millisecond), res.Outcome, res.Reply)
		fmt.Printf("  turn=%d confirmed=%s\n", res.SessionState.Turn, strings.Join(res.SessionState.ConfirmedSymptoms, ", "))
		if len(res.Diseases) > 0 {
			fmt.Printf("  diseases=%s\n", strings.Join(res.Diseases, ", "))
		}
		if len(res.Symptoms) > 0 {
			fmt.Printf("  symptoms=%s\n", strings.Join(res.Symptoms, ", "))
		}
	}
}
