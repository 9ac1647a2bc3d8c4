package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pixel-news/config"
	"github.com/oksasatya/pixel-news/pkg/helpers"
	"github.com/oksasatya/pixel-news/pkg/mailer"
)

const maxSendAttempts = 8

// retry republishes msg with a bumped retry counter after a backoff, so a
// failing mail provider is not hammered. Exhausted messages are dropped.
func retry(ctx context.Context, ch *amqp.Channel, queue string, msg amqp.Delivery, cause error, logger *logrus.Logger) {
	attempt := helpers.RetryCount(msg.Headers) + 1
	fields := logrus.Fields{"message_id": msg.MessageId, "attempt": attempt}
	if attempt > maxSendAttempts {
		helpers.LogError(logger, "receipt send failed; giving up", cause, fields)
		_ = msg.Nack(false, false)
		return
	}
	delay := helpers.RetryDelay(attempt)
	fields["delay"] = delay.String()
	helpers.LogWarn(logger, "receipt send failed; retrying", cause, fields)
	time.Sleep(delay)

	if err := ch.PublishWithContext(ctx, "", queue, false, false, helpers.Redelivery(msg, attempt)); err != nil {
		helpers.LogError(logger, "republish failed; requeueing", err, fields)
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no receipts will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQReceiptQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQReceiptQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQReceiptQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	receipts := &mailer.ReceiptMailer{
		Sender:      mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender),
		CompanyName: cfg.CompanyName,
		SupportURL:  cfg.SupportURL,
		Logger:      logger,
	}
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := receipts.Handle(c, msg.Body)
			cancel()
			switch {
			case err == nil:
				_ = msg.Ack(false)
			case errors.Is(err, mailer.ErrUndeliverable):
				helpers.LogError(logger, "dropping receipt", err, logrus.Fields{"message_id": msg.MessageId})
				_ = msg.Nack(false, false)
			default:
				retry(ctx, ch, cfg.RabbitMQReceiptQueue, msg, err, logger)
			}
		}
		close(done)
	}()

	logger.Infof("email worker listening on queue=%s", cfg.RabbitMQReceiptQueue)
	<-stop
	logger.Info("shutting down...")
	_ = ch.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
