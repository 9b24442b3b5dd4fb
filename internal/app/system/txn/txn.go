// Package txn wraps multi-document writes in a MongoDB transaction.
//
// Transactions require a replica set (or mongos). On standalone servers
// the driver reports the missing capability in a handful of shapes; Run
// detects that with IsNotSupported and falls back to executing the
// callback without a transaction, logging a warning. The fallback keeps
// local development on a bare mongod working; production deployments are
// expected to run a replica set so every multi-step operation commits or
// aborts as a unit.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a session transaction on db's client. Any error
// returned by fn aborts the transaction; nothing fn wrote survives. The
// context passed to fn carries the session and must be used for every
// operation that should be part of the transaction.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			log.Warn("transactions not supported by this MongoDB deployment; running without atomicity",
				zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		log.Warn("transactions not supported by this MongoDB deployment; running without atomicity",
			zap.Error(err))
		return fn(ctx)
	}
	return err
}

// Server error codes that indicate transactions/sessions are unavailable:
// 20 IllegalOperation variants on standalone, 51 and 263 for operations
// rejected inside a transaction.
var notSupportedCodes = map[int32]bool{20: true, 51: true, 263: true}

// Keyword fragments seen in driver/server messages when the deployment
// cannot do transactions. Two or more matching fragments means "not
// supported" rather than an ordinary transaction failure.
var notSupportedKeywords = []string{
	"transaction",
	"session",
	"replica set",
	"not supported",
	"illegal operation",
}

// IsNotSupported reports whether err indicates the MongoDB deployment
// cannot run multi-document transactions (standalone server, old wire
// version), as opposed to a transaction that legitimately failed.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return notSupportedCodes[cmdErr.Code]
	}

	msg := strings.ToLower(err.Error())
	hits := 0
	for _, kw := range notSupportedKeywords {
		if strings.Contains(msg, kw) {
			hits++
		}
	}
	return hits >= 2
}
