// Command frontend is the HTTP-facing process: it accepts client
// connections, balances requests across a pool of worker subprocesses, and
// speaks the length-prefixed IPC framing to them over Unix sockets.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"appgw/codec"
	"appgw/frontend"
	"appgw/frontend/middleware"
	"appgw/loadbalance"
	"appgw/message"
	"appgw/registry"
	"appgw/supervisor"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:3100", "address the front-end listens on")
	codecName := flag.String("codec", "binary", "wire codec: json or binary")
	balancerName := flag.String("balancer", "roundrobin", "balancer: roundrobin, weighted, or consistenthash")
	registryKind := flag.String("registry", "mem", "worker directory: mem or etcd")
	etcdEndpoints := flag.String("etcd-endpoints", "localhost:2379", "comma-separated etcd endpoints, used when -registry=etcd")
	workerBin := flag.String("worker-bin", "", "path to the worker binary; when set, spawns and supervises worker subprocesses")
	workerModule := flag.String("worker-module", "echo:app", "module:attr passed to each spawned worker's -module flag")
	workerCount := flag.Int("workers", 1, "number of worker subprocesses to spawn when -worker-bin is set")
	sockDir := flag.String("sock-dir", "/tmp", "directory for spawned workers' Unix sockets")
	respawn := flag.Bool("respawn", false, "respawn workers that exit")
	rateLimit := flag.Float64("rate-limit", 0, "requests/sec allowed per front-end process; 0 disables rate limiting")
	rateBurst := flag.Int("rate-burst", 1, "burst size for -rate-limit")
	timeout := flag.Duration("timeout", 30*time.Second, "per-request timeout")
	shutdownTimeout := flag.Duration("shutdown-timeout", 10*time.Second, "grace period for in-flight requests on shutdown")
	flag.Parse()

	codecType, ok := codec.ParseCodecName(*codecName)
	if !ok {
		log.Fatalf("frontend: unknown -codec %q", *codecName)
	}
	newBalancer, ok := loadbalance.ParseBalancerName(*balancerName)
	if !ok {
		log.Fatalf("frontend: unknown -balancer %q", *balancerName)
	}

	var reg registry.Registry
	switch *registryKind {
	case "mem":
		reg = registry.NewMemRegistry()
	case "etcd":
		endpoints := strings.Split(*etcdEndpoints, ",")
		etcdReg, err := registry.NewEtcdRegistry(endpoints)
		if err != nil {
			log.Fatalf("frontend: connecting to etcd: %v", err)
		}
		reg = etcdReg
	default:
		log.Fatalf("frontend: unknown -registry %q", *registryKind)
	}

	const poolName = "workers"

	if *workerBin != "" {
		sup := &supervisor.Supervisor{PoolName: poolName, Registry: reg, SockDir: *sockDir, Respawn: *respawn}
		specs := make([]supervisor.WorkerSpec, *workerCount)
		for i := range specs {
			specs[i] = supervisor.WorkerSpec{
				Command: *workerBin,
				Args:    []string{"-module", *workerModule, "-codec", *codecName},
				Weight:  1,
			}
		}
		if err := sup.SpawnWorkers(specs); err != nil {
			log.Fatalf("frontend: spawning workers: %v", err)
		}
		defer sup.Shutdown()
	}

	dispatcher := &frontend.Dispatcher{
		PoolName: poolName,
		Registry: reg,
		Balancer: newBalancer(),
		Codec:    codec.GetCodec(codecType),
	}

	handler := middleware.HandlerFunc(func(ctx context.Context, req *message.ParsedRequest) (*middleware.Response, error) {
		return dispatcher.Dispatch(ctx, req)
	})

	chain := []middleware.Middleware{middleware.LoggingMiddleware(), middleware.TimeoutMiddleware(*timeout)}
	if *rateLimit > 0 {
		chain = append(chain, middleware.RateLimitMiddleware(*rateLimit, *rateBurst))
	}
	handler = middleware.Chain(chain...)(handler)

	server := &frontend.Server{Handler: handler}

	go func() {
		log.Printf("frontend: listening on %s", *addr)
		if err := server.Serve("tcp", *addr); err != nil {
			log.Fatalf("frontend: serve: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh

	log.Print("frontend: shutting down")
	if err := server.Shutdown(*shutdownTimeout); err != nil {
		log.Printf("frontend: shutdown: %v", err)
	}
}
