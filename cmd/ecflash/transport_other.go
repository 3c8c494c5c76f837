//go:build !linux

package main

import (
	"github.com/pkg/errors"

	"github.com/openecfw/ecflash/ecproto"
)

func openChardev(string) (ecproto.Transport, func() error, error) {
	return nil, nil, errors.New("the chardev transport requires linux")
}
