// Package history stores bounded metric history for live charts.
//
// RingBuffer is a generic fixed-capacity FIFO. Series groups the buffers
// of one chart (for example upload and download throughput) and pushes to
// all of them together so parallel slices stay aligned by index.
//
// The network chart keeps 20 points; gauge trend lines keep 60.
package history
