package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shpandrak/shpanzip/integrations/ws"
	"github.com/shpandrak/shpanzip/stream"
)

type StockDto struct {
	Data []struct {
		LastPrice  float64 `json:"p"`
		Symbol     string  `json:"s"`
		TimeMillis int64   `json:"t"`
		Volume     float64 `json:"v"`
	} `json:"data"`
	Type string `json:"type"`
}

type trade struct {
	symbol string
	price  float64
	at     time.Time
}

// Pairs the trades of two symbols, each one read from its own websocket, printing the price spread
// of every pair until the timeout is reached.
func main() {
	apiKey := os.Getenv("FINNHUB_API_KEY")
	if apiKey == "" {
		log.Fatal("Missing FINNHUB_API_KEY")
	}

	// Set timeout so it won't run forever
	ctx, cancelFunc := context.WithTimeout(context.Background(), time.Second*20)
	defer cancelFunc()

	err := stream.Zip(
		tradesOf(apiKey, "BINANCE:BTCUSDT"),
		tradesOf(apiKey, "BINANCE:ETHUSDT"),
		func(btc trade, eth trade) string {
			return fmt.Sprintf(
				"%s %.2f / %s %.2f = %.4f (%s apart)",
				btc.symbol, btc.price, eth.symbol, eth.price, btc.price/eth.price, btc.at.Sub(eth.at).Abs(),
			)
		},
	).Consume(ctx, func(line string) {
		fmt.Println(line)
	})

	if err != nil {
		if ctx.Err() != nil {
			log.Println("Done consuming the stream")
		} else {
			panic(err)
		}
	}
}

func tradesOf(apiKey string, symbol string) stream.Stream[trade] {
	return stream.MapWhileFiltering(
		ws.CreateJsonStreamFromWebSocket[StockDto](createWebSocketFactory(apiKey, symbol), ws.WithReadLimit(1<<20)),
		mapStockToTrade,
	)
}

func mapStockToTrade(m StockDto) *trade {
	if len(m.Data) > 0 {
		return &trade{
			symbol: m.Data[0].Symbol,
			price:  m.Data[0].LastPrice,
			at:     time.UnixMilli(m.Data[0].TimeMillis),
		}
	}
	return nil
}

func createWebSocketFactory(apiKey string, symbol string) func(ctx context.Context) (*websocket.Conn, error) {
	return func(ctx context.Context) (*websocket.Conn, error) {
		w, _, err := websocket.DefaultDialer.DialContext(ctx, "wss://ws.finnhub.io?token="+apiKey, nil)
		if err != nil {
			return nil, fmt.Errorf("error dialing websocket: %w", err)
		}

		msg, _ := json.Marshal(map[string]any{"type": "subscribe", "symbol": symbol})
		err = w.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("error writing message to websocket: %w", err)
		}
		return w, nil
	}
}
