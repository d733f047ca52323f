// Command recoder batch-transcodes video files with ffmpeg.
//
// The run command walks the input directory, encodes every file it has not
// already produced an output for, and archives the originals. The plan
// command prints the stream selection and ffmpeg command for one file
// without encoding it; watch re-runs the batch when new files arrive.
package main
