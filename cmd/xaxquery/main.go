// Command xaxquery sends one translation request to a decision service and
// prints the reply. Useful for smoke-testing a running xaxd.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"net/netip"
	"os"
	"time"

	v1 "xaxlib-go/pkg/protocol/v1"
)

func main() {
	proto := flag.String("proto", "unix", "transport to the decision service (unix or tcp)")
	addr := flag.String("addr", "/tmp/xaxd.sock", "socket path or host:port of the decision service")
	txid := flag.Uint("txid", 1, "transaction id to use")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: xaxquery [options] <address>\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	target, err := netip.ParseAddr(flag.Arg(0))
	if err != nil {
		log.Fatalf("invalid address %q: %v", flag.Arg(0), err)
	}
	target = target.Unmap()
	family := v1.FamilyIPv6
	if target.Is4() {
		family = v1.FamilyIPv4
	}

	req, err := v1.NewRequestMessage(uint32(*txid), family, target)
	if err != nil {
		log.Fatalf("failed to build request: %v", err)
	}

	conn, err := net.DialTimeout(*proto, *addr, 5*time.Second)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	if _, err := conn.Write(req.Encode()); err != nil {
		log.Fatalf("failed to send request: %v", err)
	}
	raw, err := v1.ReadWireformat(conn)
	if err != nil {
		log.Fatalf("failed to read reply: %v", err)
	}
	reply, err := v1.ParseMessage(raw)
	if err != nil {
		log.Fatalf("failed to parse reply: %v", err)
	}

	switch m := reply.(type) {
	case *v1.SuccessfulResponseMessage:
		fmt.Printf("txid=%#x %s %s => %s %s\n", m.TransactionID(), family, target, m.Family(), m.Address())
	case *v1.ErroneousResponseMessage:
		fmt.Printf("txid=%#x %s %s => refused: %s\n", m.TransactionID(), family, target, m.Code())
		os.Exit(1)
	default:
		log.Fatalf("unexpected reply type %s", m.Type())
	}
}
