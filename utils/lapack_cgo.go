//go:build cgo && netlib

package utils

/*
#cgo LDFLAGS: -lopenblas -lgfortran -lm -lpthread
#include <cblas.h>
*/
import "C"

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/blas/blas64"
	netblas "gonum.org/v1/netlib/blas/netlib"
)

// Dense products in the local MLS solves go through netlib when built with
// the netlib tag.
func init() {
	blas64.Use(netblas.Implementation{})
	logrus.Debug("using netlib to accelerate BLAS")
}
