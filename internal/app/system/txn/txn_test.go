package txn

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotSupported(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "unrelated error", err: errors.New("connection refused"), want: false},

		// Server codes a standalone deployment answers with.
		{name: "code 20", err: mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member"}, want: true},
		{name: "code 51", err: mongo.CommandError{Code: 51, Message: "Illegal operation"}, want: true},
		{name: "code 263", err: mongo.CommandError{Code: 263, Message: "Cannot run in a multi-document transaction"}, want: true},
		{name: "unrelated command error", err: mongo.CommandError{Code: 11000, Message: "duplicate key"}, want: false},
		{name: "wrapped command error", err: fmt.Errorf("bootstrap: %w", mongo.CommandError{Code: 20, Message: "no replica set"}), want: true},

		// Message matching needs two fragments; one alone is an ordinary
		// transaction failure, not a capability gap.
		{name: "transaction plus replica set", err: errors.New("transaction failed because this is not a replica set member"), want: true},
		{name: "session plus not supported", err: errors.New("session operations are not supported on this server"), want: true},
		{name: "transaction plus session", err: errors.New("cannot start transaction in current session state"), want: true},
		{name: "illegal operation during transaction", err: errors.New("illegal operation during transaction"), want: true},
		{name: "single fragment", err: errors.New("transaction failed"), want: false},

		// Fragment matching ignores case.
		{name: "uppercase fragments", err: errors.New("TRANSACTION aborted on REPLICA SET"), want: true},
		{name: "mixed case fragments", err: errors.New("Transaction Session error"), want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsNotSupported(tc.err); got != tc.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
