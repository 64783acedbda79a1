// Command worker hosts one AppRuntime behind a Unix socket, speaking the
// gateway contract to a front-end process over the length-prefixed IPC
// framing.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"appgw/codec"
	"appgw/gateway"
	"appgw/workerproc"
)

func main() {
	module := flag.String("module", "echo:app", "module:attr naming the AppRuntime to serve")
	sockPath := flag.String("sock", "/tmp/worker-1", "Unix socket path to listen on")
	codecName := flag.String("codec", "binary", "wire codec: json or binary")
	queueDepth := flag.Int("queue-depth", 8, "bridge invocation queue depth")
	flag.Parse()

	codecType, ok := codec.ParseCodecName(*codecName)
	if !ok {
		log.Fatalf("worker: unknown -codec %q", *codecName)
	}

	app, err := gateway.LoadRuntime(*module)
	if err != nil {
		log.Fatalf("worker: %v", err)
	}

	bridge := gateway.NewBridge(app, *queueDepth)
	defer bridge.Close()

	server := &workerproc.Server{
		Bridge:     bridge,
		Codec:      codec.GetCodec(codecType),
		ServerAddr: *sockPath,
	}

	os.Remove(*sockPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		log.Print("worker: received shutdown signal")
		server.Close()
		os.Remove(*sockPath)
		os.Exit(0)
	}()

	log.Printf("worker: listening on %s, module=%s", *sockPath, *module)
	if err := server.Serve(*sockPath); err != nil {
		log.Fatalf("worker: serve: %v", err)
	}
}
