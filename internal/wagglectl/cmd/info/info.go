// Package info prints host facts useful when sizing daemon worker limits.
package info

import (
	"context"
	"fmt"
	"net"
	"reflect"
	"strconv"

	hoststat "github.com/likexian/host-stat-go"
	"github.com/spf13/cobra"

	"github.com/ravenhall/waggle/internal/wagglectl/cmd/util"
	"github.com/ravenhall/waggle/pkg/cli/genericclioptions"
	"github.com/ravenhall/waggle/pkg/utils/templates"
)

var infoExample = templates.Examples(`
		# Print the host information
		wagglectl info`)

// Info is an options struct to support 'info' sub command.
type Info struct {
	HostName  string
	IPAddress string
	OSRelease string
	CPUCore   uint64
	LoadNow   float64
	MemTotal  string
	MemFree   string
	genericclioptions.IOStreams
}

// NewCmdInfo returns new initialized instance of 'info' sub command.
func NewCmdInfo(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &Info{IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:                   "info",
		DisableFlagsInUseLine: true,
		Short:                 "Print the host information",
		Long:                  "Print the host information.",
		Example:               infoExample,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(f.Printer(), o.Run(cmd.Context(), args))
		},
	}

	return cmd
}

// Run executes an info sub command using the specified options.
func (o *Info) Run(ctx context.Context, args []string) error {
	var info Info

	hostInfo, err := hoststat.GetHostInfo()
	if err != nil {
		return fmt.Errorf("get host info failed!error:%w", err)
	}

	info.HostName = hostInfo.HostName
	info.OSRelease = hostInfo.Release + " " + hostInfo.OSBit

	memStat, err := hoststat.GetMemStat()
	if err != nil {
		return fmt.Errorf("get mem stat failed!error:%w", err)
	}

	info.MemTotal = strconv.FormatUint(memStat.MemTotal, 10) + "M"
	info.MemFree = strconv.FormatUint(memStat.MemFree, 10) + "M"
	info.IPAddress = localIP()

	cpuInfo, err := hoststat.GetCPUInfo()
	if err != nil {
		return fmt.Errorf("get cpu stat failed!error:%w", err)
	}

	info.CPUCore = cpuInfo.CoreCount

	loadStat, err := hoststat.GetLoadStat()
	if err != nil {
		return fmt.Errorf("get load stat failed!error:%w", err)
	}

	info.LoadNow = loadStat.LoadNow

	s := reflect.ValueOf(&info).Elem()
	typeOfInfo := s.Type()

	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		if typeOfInfo.Field(i).Name == "IOStreams" {
			continue
		}

		v := fmt.Sprintf("%v", f.Interface())
		if v != "" {
			fmt.Fprintf(o.Out, "%12s %v\n", typeOfInfo.Field(i).Name+":", f.Interface())
		}
	}

	return nil
}

func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
			return ipNet.IP.String()
		}
	}
	return ""
}
