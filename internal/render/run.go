package render

import rl "github.com/gen2brain/raylib-go/raylib"

// Run opens the window and drives the main loop. Each frame it calls update
// (input, pipeline Tick), then begins drawing and calls draw (which clears
// and renders). This keeps the frame loop separate from host logic.
func Run(title string, width, height int32, update, draw func()) {
	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(width, height, title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(60)

	for !rl.WindowShouldClose() {
		update()

		rl.BeginDrawing()
		draw()
		rl.EndDrawing()
	}
}
