package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"downcast/internal/domain"
	"downcast/internal/service"

	tele "gopkg.in/telebot.v3"
)

func StartTelegramBot(token string, forecastService *service.ForecastService) {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/forecast", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /forecast AAPL\nTracked: %s", strings.Join(domain.DefaultTickers, ", ")))
		}
		ticker := strings.ToUpper(args[0])
		result, err := forecastService.Forecast(context.Background(), ticker)
		if err != nil {
			return c.Send(fmt.Sprintf("Error forecasting %s: %v", ticker, err))
		}
		msg := fmt.Sprintf(
			"%s drop forecast\nNext day: %s\nTwo weeks: %s\nOne month: %s\n(1.0 = predicted drop)",
			result.Ticker, result.Next, result.Week, result.Month,
		)
		return c.Send(msg)
	})

	b.Handle("/history", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /history AAPL")
		}
		ticker := strings.ToUpper(args[0])
		rows, err := forecastService.History(context.Background(), ticker, 5)
		if err != nil {
			return c.Send(fmt.Sprintf("Error loading history for %s: %v", ticker, err))
		}
		if len(rows) == 0 {
			return c.Send(fmt.Sprintf("No forecasts recorded for %s yet", ticker))
		}
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%s recent forecasts\n", ticker))
		for _, row := range rows {
			sb.WriteString(fmt.Sprintf("%s  next=%s week=%s month=%s\n",
				row.CreatedAt.Format("2006-01-02 15:04"), row.Next, row.Week, row.Month))
		}
		return c.Send(sb.String())
	})

	log.Println("Telegram bot started")
	go b.Start()
}
