package discovery

import (
	"fmt"
	"log"
	"slices"
	"strconv"

	"quizhub-service/internal/config"

	"github.com/hashicorp/consul/api"
)

// ServiceRegistry registers this service with Consul and resolves the
// addresses of its peers. When Consul is disabled in config every
// method is a no-op so local runs need no agent.
type ServiceRegistry struct {
	client *api.Client
	config *config.Config
}

func NewServiceRegistry(cfg *config.Config) (*ServiceRegistry, error) {
	if !cfg.Consul.Enabled {
		log.Println("Consul is disabled, service discovery is a no-op")
		return &ServiceRegistry{config: cfg}, nil
	}

	consulConfig := api.DefaultConfig()
	consulConfig.Address = cfg.Consul.ConsulAddress

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %v", err)
	}

	return &ServiceRegistry{
		client: client,
		config: cfg,
	}, nil
}

func (sr *ServiceRegistry) Register() error {
	if sr.client == nil {
		return nil
	}

	httpPort, _ := strconv.Atoi(sr.config.Server.Port)

	registration := &api.AgentServiceRegistration{
		ID:      sr.config.Server.ServiceID + "-http",
		Name:    sr.config.Server.ServiceName,
		Port:    httpPort,
		Address: sr.config.Server.ServiceAddress,
		Check: &api.AgentServiceCheck{
			HTTP:     fmt.Sprintf("http://%s:%s/health", sr.config.Server.ServiceAddress, sr.config.Server.Port),
			Interval: "10s",
			Timeout:  "5s",
		},
		Tags: []string{"quiz", "profile", "http"},
		Meta: map[string]string{
			"protocol": "http",
		},
	}

	if err := sr.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register HTTP service with Consul: %v", err)
	}

	log.Println("Successfully registered HTTP service with Consul")
	return nil
}

func (sr *ServiceRegistry) Deregister() error {
	if sr.client == nil {
		return nil
	}

	if err := sr.client.Agent().ServiceDeregister(sr.config.Server.ServiceID + "-http"); err != nil {
		log.Printf("Error deregistering HTTP service: %v", err)
	}

	return nil
}

// GetServiceAddress resolves a healthy instance of a peer service,
// preferring those that advertise the requested protocol.
func (sr *ServiceRegistry) GetServiceAddress(serviceName string, protocol string) (string, error) {
	if sr.client == nil {
		return "", fmt.Errorf("consul is disabled")
	}

	if protocol == "" {
		protocol = "http"
	}

	services, meta, err := sr.client.Health().Service(serviceName, "", true, &api.QueryOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to find service %s: %v", serviceName, err)
	}

	log.Printf("Found %d instances of service %s (ConsulIndex: %d)", len(services), serviceName, meta.LastIndex)

	if len(services) == 0 {
		return "", fmt.Errorf("no healthy instances of service %s found", serviceName)
	}

	var matching []*api.ServiceEntry
	for _, service := range services {
		if proto, ok := service.Service.Meta["protocol"]; ok && proto == protocol {
			matching = append(matching, service)
		} else if slices.Contains(service.Service.Tags, protocol) {
			matching = append(matching, service)
		}
	}

	if len(matching) == 0 {
		return "", fmt.Errorf("no healthy instances of service %s with protocol %s found", serviceName, protocol)
	}

	service := matching[0]
	address := service.Service.Address
	if address == "" {
		address = service.Node.Address
	}

	return fmt.Sprintf("%s:%d", address, service.Service.Port), nil
}
