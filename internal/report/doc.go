// Package report turns fetched records into chat-sized text.
//
// The flow is GroupRecords, then Renderer.Render, then Split. Render
// produces one Text plus a list of Boundaries (byte offsets of line starts
// that are safe split points). Split packs the text into chunks at those
// boundaries only, so a record line is never cut and joining the chunks
// with ChunkSeparator gives back the rendered text exactly.
package report
