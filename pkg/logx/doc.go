// Package logx configures jiradigest's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - JSON output structured for log shippers
//   - An optional JSON log file next to either of the above
package logx
