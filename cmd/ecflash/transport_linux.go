//go:build linux

package main

import (
	"github.com/openecfw/ecflash/ecproto"
	"github.com/openecfw/ecflash/transport/chardev"
)

func openChardev(path string) (ecproto.Transport, func() error, error) {
	t, err := chardev.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return t, t.Close, nil
}
