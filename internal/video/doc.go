// Package video reads video metadata and decoded frames through the
// ffprobe and ffmpeg command line tools.
//
// # Metadata
//
//	info, err := video.Probe(ctx, "ffprobe", "/srv/signage/media/clip.mp4")
//	angle := video.DetectRotation(info) // 0, 90, 180 or 270, clockwise
//
// An explicit rotation tag (or display matrix) wins. Without one, a coded
// frame taller than wide is assumed to be a portrait clip and rotated 90°.
//
// # Frames
//
//	opener := video.NewFFmpeg()
//	stream, err := opener.Open(ctx, path)
//	defer stream.Close()
//	for {
//	    frame, err := stream.ReadFrame()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	}
//
// Frames are delivered unrotated (ffmpeg runs with -noautorotate) so the
// caller applies DetectRotation itself.
package video
