// Package delivery posts rendered report chunks to a chat destination.
//
// A Deliverer wraps one destination API (see the slack and telegram
// subpackages). Sender drives a Deliverer over a run's chunks: strictly in
// order, paced by a token bucket, each call bounded by a timeout, stopping
// at the first rejection. Nothing is retried and nothing already posted is
// taken back.
package delivery
