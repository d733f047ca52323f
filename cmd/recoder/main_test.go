package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recoder/internal/config"
	"recoder/internal/testsupport"
)

const probeJSON = `{"streams":[
{"index":0,"codec_type":"video","codec_name":"h264","color_space":"bt709"},
{"index":1,"codec_type":"audio","codec_name":"ac3","channels":6,"tags":{"language":"fre"}},
{"index":2,"codec_type":"audio","codec_name":"aac","channels":2,"tags":{"language":"eng"}},
{"index":3,"codec_type":"subtitle","codec_name":"subrip","tags":{"language":"eng"}},
{"index":4,"codec_type":"subtitle","codec_name":"subrip","tags":{"language":"ger"}}
],"format":{"duration":"10.000000"}}`

const ffmpegOK = `for last; do :; done
case "$last" in
*.mkv) ;;
*) echo "ffmpeg version test"; exit 0 ;;
esac
echo "  Duration: 00:00:10.00, start: 0.000000, bitrate: 1 kb/s" >&2
printf 'out_time_us=5000000\nprogress=continue\nout_time_us=10000000\nprogress=end\n'
printf 'encoded' > "$last"
`

const ffmpegFail = `echo "Invalid data found when processing input" >&2
exit 1
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	binDir     string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	env := &cliTestEnv{cfg: cfg, binDir: filepath.Join(base, "bin")}
	testsupport.WriteScript(t, filepath.Join(env.binDir, "ffprobe"), "cat <<'JSON'\n"+probeJSON+"\nJSON\n")
	env.setFFmpeg(t, ffmpegOK)
	cfg.Tools.FFprobe = filepath.Join(env.binDir, "ffprobe")
	cfg.Tools.FFmpeg = filepath.Join(env.binDir, "ffmpeg")

	env.configPath = filepath.Join(base, "recoder.toml")
	writeTestConfig(t, env.configPath, cfg)
	return env
}

func (e *cliTestEnv) setFFmpeg(t *testing.T, body string) {
	t.Helper()
	testsupport.WriteScript(t, filepath.Join(e.binDir, "ffmpeg"), body)
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\noutput:\n%s", needle, haystack)
	}
}

func requireExists(t *testing.T, path string, want bool) {
	t.Helper()
	_, err := os.Stat(path)
	if exists := err == nil; exists != want {
		t.Fatalf("%s exists=%v, want %v", path, exists, want)
	}
}
