// posepeer stands in for the phone-side server during manual testing. It
// accepts one bridge at a time, prints every status line the bridge sends
// and forwards stdin lines as pose messages.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/danmuck/posebridge/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	listen := flag.String("listen", ":5000", "listen address")
	flag.Parse()
	logging.ConfigureRuntime()

	ln, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "posepeer: %v\n", err)
		os.Exit(1)
	}
	defer ln.Close()
	log.Info().Msgf("posepeer listening addr=%s", ln.Addr())

	p := &peer{}
	go p.forwardStdin()
	for {
		conn, err := ln.Accept()
		if err != nil {
			fmt.Fprintf(os.Stderr, "posepeer: accept: %v\n", err)
			os.Exit(1)
		}
		log.Info().Msgf("posepeer bridge connected remote=%s", conn.RemoteAddr())
		p.set(conn)
		p.printStatus(conn)
		p.clear(conn)
		log.Info().Msgf("posepeer bridge gone remote=%s", conn.RemoteAddr())
	}
}

type peer struct {
	mu   sync.Mutex
	conn net.Conn
}

func (p *peer) set(conn net.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn = conn
}

func (p *peer) clear(conn net.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == conn {
		p.conn = nil
	}
	_ = conn.Close()
}

func (p *peer) printStatus(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		fmt.Printf("< %s\n", scanner.Text())
	}
}

func (p *peer) forwardStdin() {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		p.mu.Lock()
		conn := p.conn
		p.mu.Unlock()
		if conn == nil {
			log.Warn().Msg("posepeer no bridge connected; line dropped")
			continue
		}
		if _, err := fmt.Fprintf(conn, "%s\n", scanner.Text()); err != nil {
			log.Warn().Msgf("posepeer send failed err=%v", err)
		}
	}
}
