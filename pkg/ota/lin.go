package ota

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ixugo/goddd/pkg/system"
)

const linuxTarPath = "upgrade.tar.gz"

// LinuxOTA 下载升级包到工作目录
// 只负责拿到文件，解压与替换交由人工或运维脚本执行
type LinuxOTA struct {
	err        error
	OnProgress func(current, total int64)
}

// Download 下载 link 指向的升级包，落盘为工作目录下的 upgrade.tar.gz
func (l *LinuxOTA) Download(link string) *LinuxOTA {
	if l.err != nil {
		return l
	}

	client := &http.Client{Timeout: 30 * time.Minute}
	resp, err := client.Get(link)
	if err != nil {
		l.err = err
		return l
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		l.err = fmt.Errorf("下载失败，状态码: %d", resp.StatusCode)
		return l
	}

	target := filepath.Join(system.Getwd(), linuxTarPath)
	_ = os.RemoveAll(target)

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		l.err = err
		return l
	}
	defer f.Close()

	p := NewProgressReader(resp.ContentLength, resp.Body, l.OnProgress)
	defer p.Close()

	if _, err := io.Copy(f, p); err != nil {
		l.err = err
	}
	return l
}

// Error 返回链式调用中的首个错误
func (l *LinuxOTA) Error() error {
	return l.err
}
