/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gomls/InputParameters"
	"github.com/notargets/gomls/comm"
	"github.com/notargets/gomls/geometry"
	"github.com/notargets/gomls/model_problems"
	"github.com/notargets/gomls/partitions"
	"github.com/notargets/gomls/pointcloud"
	"github.com/notargets/gomls/utils"
)

type ModelPeaks struct {
	ICFile  string
	Profile string
}

// PeaksResult summarizes one transfer of the peaks fields.
type PeaksResult struct {
	Targets     int
	L2Error     float64 // of the peaks field over all targets
	MaxError    float64
	LinearError float64 // max error of the linear field, when transferred
	Stats       pointcloud.Stats
	Elapsed     time.Duration
}

// PeaksCmd represents the peaks command
var PeaksCmd = &cobra.Command{
	Use:   "peaks",
	Short: "Transfer the peaks surface from a grid to its cell centers",
	Long: `Transfers the peaks surface and a linear ramp from an N x N grid of sources
to the (N-1)^2 cell centers, with both clouds partitioned by RCB over a set of
ranks, and reports the transfer error.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			mp  = &ModelPeaks{}
		)
		if mp.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		mp.Profile, _ = cmd.Flags().GetString("profile")
		ip := processPeaksInput(mp)
		ip.Print()
		switch mp.Profile {
		case "cpu":
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
		case "":
		default:
			logrus.Fatalf("unknown profile mode %q, want cpu or mem", mp.Profile)
		}
		res, err := RunPeaks(ip)
		if err != nil {
			logrus.WithError(err).Fatal("peaks transfer failed")
		}
		fmt.Printf("%d\t\t\t\t= Targets\n", res.Targets)
		fmt.Printf("%8.5e\t\t= L2 Error\n", res.L2Error)
		fmt.Printf("%8.5e\t\t= Max Error\n", res.MaxError)
		if ip.NumFields > 1 {
			fmt.Printf("%8.5e\t\t= Linear Field Max Error\n", res.LinearError)
		}
		fmt.Printf("[%d/%d]\t\t\t= Zero/Reduced Rows\n", res.Stats.ZeroRows, res.Stats.ReducedRows)
		fmt.Printf("%v\t\t= Elapsed\n", res.Elapsed)
		logrus.Debug(utils.GetMemUsage())
	},
}

func processPeaksInput(mp *ModelPeaks) (ip *InputParameters.MLSParameters) {
	var err error
	ip = InputParameters.NewMLSParameters()
	if len(mp.ICFile) != 0 {
		var data []byte
		if data, err = os.ReadFile(mp.ICFile); err != nil {
			panic(err)
		}
		if err = ip.Parse(data); err != nil {
			panic(err)
		}
	}
	// Flags, GOMLS_* variables and the config file override the input file
	if viper.IsSet("procs") {
		ip.NumProcs = viper.GetInt("procs")
	}
	if viper.IsSet("n") {
		ip.GridN = viper.GetInt("n")
	}
	if viper.IsSet("order") {
		ip.BasisOrder = viper.GetInt("order")
	}
	if viper.IsSet("kernel") {
		ip.Kernel = viper.GetString("kernel")
	}
	if viper.IsSet("fallback") {
		ip.Fallback = viper.GetString("fallback")
	}
	return
}

func init() {
	rootCmd.AddCommand(PeaksCmd)
	PeaksCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- RadiusFactor\n\t- BasisOrder\n\t- Kernel")
	PeaksCmd.Flags().IntP("procs", "p", 1, "number of ranks")
	PeaksCmd.Flags().IntP("n", "n", 100, "number of source points along each axis")
	PeaksCmd.Flags().IntP("order", "o", 2, "polynomial basis order, 0 to 3")
	PeaksCmd.Flags().StringP("kernel", "k", pointcloud.WendlandC2.String(), "radial basis kernel")
	PeaksCmd.Flags().String("fallback", pointcloud.ReduceOrder.String(), "policy for targets with too few neighbors: ReduceOrder or ZeroRow")
	PeaksCmd.Flags().String("profile", "", "write a cpu or mem profile")
	for _, key := range []string{"procs", "n", "order", "kernel", "fallback"} {
		if err := viper.BindPFlag(key, PeaksCmd.Flags().Lookup(key)); err != nil {
			panic(err)
		}
	}
}

// RunPeaks runs the peaks transfer over ip.NumProcs ranks.
func RunPeaks(ip *InputParameters.MLSParameters) (res PeaksResult, err error) {
	var (
		opts   pointcloud.Options
		radius float64
		grid   = model_problems.NewPeaksGrid(ip.GridN)
		np     = ip.NumProcs
		nf     = ip.NumFields
		mu     sync.Mutex
		start  = time.Now()
		errs   []float64
	)
	if opts, err = ip.Options(); err != nil {
		return
	}
	if opts.Dimension != 2 {
		err = errors.Errorf("the peaks problem is two dimensional, got dimension %d", opts.Dimension)
		return
	}
	if radius, err = ip.SupportRadius(grid.H); err != nil {
		return
	}
	err = comm.Run(np, func(c comm.Communicator) (err error) {
		src, srcIDs := grid.Block(c.Rank(), np, false)
		tgt, tgtIDs := grid.Block(c.Rank(), np, true)
		if src, srcIDs, err = rebalance(c, src, srcIDs); err != nil {
			return errors.WithMessage(err, "sources")
		}
		if tgt, tgtIDs, err = rebalance(c, tgt, tgtIDs); err != nil {
			return errors.WithMessage(err, "targets")
		}
		interp := pointcloud.NewInterpolator(c, radius, opts)
		if err = interp.SetProblem(src, srcIDs, tgt, tgtIDs); err != nil {
			return
		}
		fields := model_problems.Fields(src)[:nf*len(srcIDs)]
		out := interp.Interpolate(fields, nf)
		var (
			nt        = len(tgtIDs)
			local     = make([]float64, nt)
			linearMax float64
		)
		for i := 0; i < nt; i++ {
			x, y := tgt[2*i], tgt[2*i+1]
			local[i] = out[i] - model_problems.Peaks(x, y)
			if nf > 1 {
				linearMax = math.Max(linearMax, math.Abs(out[nt+i]-(x+2*y)))
			}
		}
		stats := interp.Operator().GlobalStats(c)
		linearMax = c.AllReduceFloat64(comm.Max, []float64{linearMax})[0]
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, local...)
		if c.Rank() == 0 {
			res.Stats, res.LinearError = stats, linearMax
			logrus.WithFields(logrus.Fields{
				"ranks": np, "targets": stats.Targets, "imports": stats.Imports,
				"nonzeros": stats.Nonzeros, "zeroRows": stats.ZeroRows, "reducedRows": stats.ReducedRows,
			}).Info("mls operator assembled")
		}
		return
	})
	if err != nil {
		return
	}
	res.Targets = len(errs)
	res.L2Error = floats.Norm(errs, 2)
	if len(errs) > 0 {
		res.MaxError = floats.Norm(errs, math.Inf(1))
	}
	res.Elapsed = time.Since(start)
	return
}

// rebalance moves points to the ranks RCB assigns them.
func rebalance(c comm.Communicator, coords []float64, gids []geometry.EntityID) ([]float64, []geometry.EntityID, error) {
	p := partitions.NewPartitioner(c, 2, nil, partitions.NewPointObjects(coords, gids, 2))
	if err := p.Partition(geometry.BoundingBoxOf(0, c.Rank(), coords, 2)); err != nil {
		return nil, nil, err
	}
	newCoords, newGIDs := partitions.MigratePoints(c, p.InputPointDestinationProcs(0, len(gids)), coords, gids, 2)
	return newCoords, newGIDs, nil
}
