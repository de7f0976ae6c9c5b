// go-inventory
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-inventory.
//
// go-inventory is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-inventory is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-inventory; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package transport

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetriesExhausted is returned when every attempt of a retried operation failed
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryOperation is one attempt of a retried operation.
// Returns: data, shouldRetry, error
// - data: the result if successful
// - shouldRetry: true if the operation should be retried
// - error: the attempt's error; permanent unless shouldRetry is true
type RetryOperation[T any] func(ctx context.Context) (T, bool, error)

// RetryConfig configures retry behavior
type RetryConfig struct {
	OnRetry     func(attempt int, err error)
	Description string
	MaxRetries  int
	RetryDelay  time.Duration
}

// DefaultRetryConfig suits opening a serial reader that was just plugged in
func DefaultRetryConfig(description string) RetryConfig {
	return RetryConfig{
		Description: description,
		MaxRetries:  3,
		RetryDelay:  250 * time.Millisecond,
	}
}

// WithRetry executes an operation with retry logic
func WithRetry[T any](ctx context.Context, config RetryConfig, operation RetryOperation[T]) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		result, shouldRetry, err := operation(ctx)
		if !shouldRetry {
			return result, err
		}
		lastErr = err

		// If we should retry but we're at max attempts, break
		if attempt >= config.MaxRetries {
			break
		}

		if config.OnRetry != nil {
			config.OnRetry(attempt+1, err)
		}

		if config.RetryDelay > 0 {
			timer := time.NewTimer(config.RetryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}

	if lastErr != nil {
		return zero, fmt.Errorf("%s: %w: %w", config.Description, ErrRetriesExhausted, lastErr)
	}
	return zero, fmt.Errorf("%s: %w", config.Description, ErrRetriesExhausted)
}
