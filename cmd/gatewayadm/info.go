package main

import (
	"fmt"
	"net"
	"strconv"

	heredoc "github.com/MakeNowJust/heredoc/v2"
	hoststat "github.com/likexian/host-stat-go"
	"github.com/spf13/cobra"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the host gatewayadm is running on",
		Long: heredoc.Doc(`
			Print CPU, memory, and network information for the machine running
			gatewayadm. Useful when filing a report against a gateway instance
			co-located with this CLI.
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printHostInfo()
		},
	}
}

func printHostInfo() error {
	hostInfo, err := hoststat.GetHostInfo()
	if err != nil {
		return fmt.Errorf("get host info: %w", err)
	}
	memStat, err := hoststat.GetMemStat()
	if err != nil {
		return fmt.Errorf("get mem stat: %w", err)
	}
	cpuStat, err := hoststat.GetCPUInfo()
	if err != nil {
		return fmt.Errorf("get cpu info: %w", err)
	}

	fmt.Printf("%12s %s\n", "HostName:", hostInfo.HostName)
	fmt.Printf("%12s %s %s\n", "OSRelease:", hostInfo.Release, hostInfo.OSBit)
	fmt.Printf("%12s %s\n", "IPAddress:", localIP())
	fmt.Printf("%12s %s\n", "CPUCore:", strconv.FormatUint(cpuStat.CoreCount, 10))
	fmt.Printf("%12s %sM\n", "MemTotal:", strconv.FormatUint(memStat.MemTotal, 10))
	fmt.Printf("%12s %sM\n", "MemFree:", strconv.FormatUint(memStat.MemFree, 10))
	return nil
}

func localIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "unknown"
	}
	defer conn.Close()
	addr := conn.LocalAddr().(*net.UDPAddr)
	return addr.IP.String()
}
