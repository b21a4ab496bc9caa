package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "bridge":
		return bridgeTemplate, nil
	case "local":
		return localTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const bridgeTemplate = `# phone-side pose server
host = "172.20.10.2"
port = 5000

connect_timeout = "5s"
read_timeout = "20s"
write_timeout = "15s"
retry_delay = "5s"
ready_notice = "客户端就绪"

# once: read one pose and exit; stream: keep reading until interrupted
mode = "once"
# truncate: keep the first 7 fields of longer lines; strict: reject them
truncation = "truncate"

# metrics_addr = "127.0.0.1:9464"
`

const localTemplate = `address = "127.0.0.1:5000"
read_timeout = "20s"
retry_delay = "5s"
mode = "stream"
truncation = "truncate"
metrics_addr = "127.0.0.1:9464"
`
