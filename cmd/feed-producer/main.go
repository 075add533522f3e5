package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event mirrors the engine's feed schema.
type Event struct {
	Action   string  `json:"action"`
	Book     string  `json:"book"`
	Side     string  `json:"side,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Quantity float64 `json:"quantity"`
	OrderID  string  `json:"orderId,omitempty"`
}

// generateRandomID creates a random alphanumeric ID
func generateRandomID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	var result strings.Builder
	for i := 0; i < length; i++ {
		result.WriteByte(charset[rand.Intn(len(charset))])
	}
	return result.String()
}

// generateEvents creates a stream of ADD/DELETE/MATCH events across books.
// DELETE events reference previously added orders so most cancels land.
func generateEvents(count int, books []string, basePrice, priceSpread float64) []Event {
	events := make([]Event, 0, count)
	resting := make(map[string][]Event) // book -> live ADD events

	for i := 0; i < count; i++ {
		book := books[rand.Intn(len(books))]
		side := "BUY"
		if rand.Float64() < 0.5 {
			side = "SELL"
		}

		// Event mix: 60% add, 15% delete, 25% match
		roll := rand.Float64()
		switch {
		case roll < 0.60:
			price := basePrice - rand.Float64()*priceSpread*0.8
			if side == "SELL" {
				price = basePrice + rand.Float64()*priceSpread*0.8
			}
			quantity := float64(rand.Intn(100) + 1)
			event := Event{
				Action:   "ADD",
				Book:     book,
				Side:     side,
				Price:    float64(int(price*100)) / 100,
				Quantity: quantity,
				OrderID:  generateRandomID(rand.Intn(4) + 5),
			}
			events = append(events, event)
			resting[book] = append(resting[book], event)

		case roll < 0.75 && len(resting[book]) > 0:
			j := rand.Intn(len(resting[book]))
			target := resting[book][j]
			resting[book] = append(resting[book][:j], resting[book][j+1:]...)
			events = append(events, Event{
				Action:  "DELETE",
				Book:    book,
				Side:    target.Side,
				Price:   target.Price,
				OrderID: target.OrderID,
			})

		default:
			price := basePrice + (rand.Float64()-0.5)*priceSpread
			events = append(events, Event{
				Action:   "MATCH",
				Book:     book,
				Side:     side,
				Price:    float64(int(price*100)) / 100,
				Quantity: float64(rand.Intn(50) + 1),
			})
		}
	}
	return events
}

func writeXML(path string, events []Event) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintln(f, "<orders>")
	for _, e := range events {
		attrs := fmt.Sprintf(`action=%q book=%q`, e.Action, e.Book)
		if e.Side != "" {
			attrs += fmt.Sprintf(` side=%q`, e.Side)
		}
		if e.Price != 0 {
			attrs += fmt.Sprintf(` price="%g"`, e.Price)
		}
		if e.Quantity != 0 {
			attrs += fmt.Sprintf(` volume="%g"`, e.Quantity)
		}
		if e.OrderID != "" {
			attrs += fmt.Sprintf(` orderId=%q`, e.OrderID)
		}
		fmt.Fprintf(f, "  <order %s/>\n", attrs)
	}
	fmt.Fprintln(f, "</orders>")
	return nil
}

func publishKafka(brokers []string, topic string, events []Event) error {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	defer writer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.Book),
			Value: value,
		})
	}
	return writer.WriteMessages(ctx, msgs...)
}

func main() {
	count := flag.Int("count", 1000, "number of events to generate")
	books := flag.String("books", "AAPL,MSFT,GOOG", "comma-separated instrument list")
	basePrice := flag.Float64("base-price", 100.0, "base price for generated orders")
	spread := flag.Float64("spread", 10.0, "price spread around the base price")
	out := flag.String("out", "", "write events to an XML file instead of Kafka")
	brokers := flag.String("brokers", "localhost:9092", "comma-separated Kafka brokers")
	topic := flag.String("topic", "orders", "Kafka topic to publish to")
	flag.Parse()

	events := generateEvents(*count, strings.Split(*books, ","), *basePrice, *spread)

	if *out != "" {
		if err := writeXML(*out, events); err != nil {
			log.Fatalf("write xml: %v", err)
		}
		log.Printf("wrote %d events to %s", len(events), *out)
		return
	}

	if err := publishKafka(strings.Split(*brokers, ","), *topic, events); err != nil {
		log.Fatalf("publish kafka: %v", err)
	}
	log.Printf("published %d events to %s", len(events), *topic)
}
