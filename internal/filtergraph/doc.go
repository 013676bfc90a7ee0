// Package filtergraph builds the ffmpeg -filter_complex graph that normalizes
// N clips to 640×360 at 30 fps and concatenates them, in submission order,
// into a single video and audio stream.
//
// Build is pure and can be tested without invoking an engine:
//
//	g, _ := filtergraph.Build(2)
//	g.Expression()
//	// [0:v]scale=640:360,setsar=1,fps=30[v0];[0:a]anull[a0];
//	// [1:v]scale=640:360,setsar=1,fps=30[v1];[1:a]anull[a1];
//	// [v0][a0][v1][a1]concat=n=2:v=1:a=1[outv][outa]
package filtergraph
