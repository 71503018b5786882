package service

type HealthStatus struct {
	Status              string            `json:"status"`
	GenerationAvailable bool              `json:"generationAvailable"`
	Provider            string            `json:"provider"`
	Services            map[string]string `json:"services"`
}

// Health reports static readiness. Collaborators are listed but never called.
func (s *Service) Health() HealthStatus {
	services := make(map[string]string, len(s.opts.Services))
	for k, v := range s.opts.Services {
		services[k] = v
	}
	return HealthStatus{
		Status:              "healthy",
		GenerationAvailable: s.gateway.Live(),
		Provider:            s.gateway.Provider(),
		Services:            services,
	}
}
