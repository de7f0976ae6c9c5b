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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBusy = errors.New("busy")

func TestWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		t.Parallel()
		attempts := 0
		var retried []int
		cfg := RetryConfig{
			Description: "open",
			MaxRetries:  3,
			OnRetry:     func(attempt int, _ error) { retried = append(retried, attempt) },
		}
		got, err := WithRetry(context.Background(), cfg, func(context.Context) (string, bool, error) {
			attempts++
			if attempts < 3 {
				return "", true, errBusy
			}
			return "port", false, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "port", got)
		assert.Equal(t, []int{1, 2}, retried)
	})

	t.Run("PermanentError", func(t *testing.T) {
		t.Parallel()
		permanent := errors.New("permission denied")
		attempts := 0
		_, err := WithRetry(context.Background(), RetryConfig{MaxRetries: 5}, func(context.Context) (int, bool, error) {
			attempts++
			return 0, false, permanent
		})
		require.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, attempts)
	})

	t.Run("Exhausted", func(t *testing.T) {
		t.Parallel()
		attempts := 0
		_, err := WithRetry(context.Background(), RetryConfig{Description: "open", MaxRetries: 2},
			func(context.Context) (int, bool, error) {
				attempts++
				return 0, true, errBusy
			})
		require.ErrorIs(t, err, ErrRetriesExhausted)
		require.ErrorIs(t, err, errBusy)
		assert.Equal(t, 3, attempts)
	})

	t.Run("ContextCancelledDuringDelay", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		cfg := RetryConfig{MaxRetries: 10, RetryDelay: time.Hour}
		_, err := WithRetry(ctx, cfg, func(context.Context) (int, bool, error) {
			return 0, true, errBusy
		})
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
