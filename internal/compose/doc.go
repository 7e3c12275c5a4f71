// Package compose renders display-sized frames for the signage viewer.
//
// Every frame is an *image.RGBA exactly the size of the display surface.
// Foreground media is scaled to the full display height, keeps its aspect
// ratio and is centered horizontally over a backdrop: the same media
// stretched to the whole display and Gaussian-blurred.
//
// # Images
//
//	c := compose.New(1920, 1080)
//	frame, err := c.Image("/srv/signage/media/lobby.jpg")
//	// on error, frame is black and still safe to show
//
// # Videos
//
// The backdrop is computed once from the first (rotated) frame and reused:
//
//	first = compose.Rotate(first, 90)
//	backdrop := c.Backdrop(first)
//	dst = c.VideoFrame(dst, compose.Rotate(next, 90), backdrop)
//
// # Modes and Transitions
//
//	dimmed := compose.NightOverlay(frame, compose.NightAlpha)
//	for _, t := range compose.FadeSteps(compose.TransitionSteps) {
//	    show(compose.Blend(prev, next, t))
//	}
package compose
