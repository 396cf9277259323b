package orders

import (
	"context"
	"time"
)

// RetryConfig задаёт бюджет повторов при конфликтах версий.
type RetryConfig struct {
	// MaxAttempts — сколько всего попыток получает операция, включая первую.
	MaxAttempts int
	// InitialDelay — пауза перед второй попыткой.
	InitialDelay time.Duration
	// DelayStep — на сколько растёт пауза с каждым следующим повтором.
	DelayStep time.Duration
	// MaxDelay — верхняя граница паузы между попытками.
	MaxDelay time.Duration
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 25 * time.Millisecond,
		DelayStep:    25 * time.Millisecond,
		MaxDelay:     250 * time.Millisecond,
	}
}

func (c RetryConfig) normalized() RetryConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.InitialDelay < 0 {
		c.InitialDelay = 0
	}
	if c.DelayStep < 0 {
		c.DelayStep = 0
	}
	if c.MaxDelay < c.InitialDelay {
		c.MaxDelay = c.InitialDelay
	}
	return c
}

// delayFor возвращает паузу перед повтором после attempt-й неудачной попытки.
// Задержка растёт линейно и ограничена сверху MaxDelay.
func (c RetryConfig) delayFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := c.InitialDelay + time.Duration(attempt-1)*c.DelayStep
	if delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

// sleepWithContext ждёт заданную паузу, прерываясь по отмене контекста.
func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
