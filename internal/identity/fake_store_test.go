package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adityakhanna/vouched/internal/entity"
	"github.com/adityakhanna/vouched/internal/repository"
)

// fakeStore is an in-memory ServiceRepository for resolver tests.
type fakeStore struct {
	services  map[uuid.UUID]*entity.Service
	names     map[uuid.UUID][]*entity.ServiceNameVariant
	conflicts []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		services: make(map[uuid.UUID]*entity.Service),
		names:    make(map[uuid.UUID][]*entity.ServiceNameVariant),
	}
}

func (f *fakeStore) GetByPhone(_ context.Context, phone string) (*entity.Service, error) {
	for _, s := range f.services {
		if s.Phone != nil && *s.Phone == phone {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*entity.Service, error) {
	for _, s := range f.services {
		if s.Email != nil && *s.Email == email {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*entity.Service, error) {
	return f.services[id], nil
}

func (f *fakeStore) GetWithNames(ctx context.Context, id uuid.UUID) (*entity.Service, []entity.ServiceNameVariant, error) {
	svc := f.services[id]
	if svc == nil {
		return nil, nil, nil
	}
	var out []entity.ServiceNameVariant
	for _, v := range f.names[id] {
		out = append(out, *v)
	}
	return svc, out, nil
}

func (f *fakeStore) Create(_ context.Context, svc *entity.Service) (uuid.UUID, error) {
	id := uuid.New()
	svc.ID = id
	svc.CreatedAt = time.Now()
	svc.UpdatedAt = svc.CreatedAt
	f.services[id] = svc
	return id, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, fields map[string]any) (bool, error) {
	svc, ok := f.services[id]
	if !ok {
		return false, nil
	}
	for col, val := range fields {
		s, ok := val.(string)
		if !ok {
			return false, fmt.Errorf("fake store: unsupported value for %q", col)
		}
		switch col {
		case "name":
			svc.Name = s
		case "phone":
			svc.Phone = &s
		case "email":
			svc.Email = &s
		case "service_type":
			svc.ServiceType = &s
		case "business_name":
			svc.BusinessName = &s
		case "address":
			svc.Address = &s
		case "website":
			svc.Website = &s
		default:
			return false, fmt.Errorf("fake store: unknown column %q", col)
		}
	}
	svc.UpdatedAt = time.Now()
	return len(fields) > 0, nil
}

func (f *fakeStore) AddName(_ context.Context, serviceID uuid.UUID, name string, confidence float64) error {
	for _, v := range f.names[serviceID] {
		if strings.EqualFold(v.Name, name) {
			v.Frequency++
			if confidence > v.Confidence {
				v.Confidence = confidence
			}
			v.LastSeenAt = time.Now()
			return nil
		}
	}
	f.names[serviceID] = append(f.names[serviceID], &entity.ServiceNameVariant{
		ID:         uuid.New(),
		ServiceID:  serviceID,
		Name:       name,
		Frequency:  1,
		Confidence: confidence,
		LastSeenAt: time.Now(),
	})
	return nil
}

func (f *fakeStore) UpdateCanonicalName(_ context.Context, serviceID uuid.UUID) error {
	svc, ok := f.services[serviceID]
	if !ok {
		return nil
	}
	var best *entity.ServiceNameVariant
	for _, v := range f.names[serviceID] {
		if best == nil {
			best = v
			continue
		}
		switch {
		case v.Score() > best.Score():
			best = v
		case v.Score() == best.Score() && v.Frequency > best.Frequency:
			best = v
		case v.Score() == best.Score() && v.Frequency == best.Frequency && v.Confidence > best.Confidence:
			best = v
		}
	}
	if best != nil {
		svc.Name = best.Name
	}
	return nil
}

func (f *fakeStore) SearchByName(_ context.Context, query string, limit int) ([]entity.Service, error) {
	q := strings.ToLower(query)
	var out []entity.Service
	for id, s := range f.services {
		hit := strings.Contains(strings.ToLower(s.Name), q)
		for _, v := range f.names[id] {
			if strings.Contains(strings.ToLower(v.Name), q) {
				hit = true
			}
		}
		if hit {
			out = append(out, *s)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) SearchByPhoneSuffix(_ context.Context, suffix string, limit int) ([]entity.Service, error) {
	var out []entity.Service
	for _, s := range f.services {
		if s.Phone != nil && strings.HasSuffix(*s.Phone, suffix) {
			out = append(out, *s)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) ReassignReferences(_ context.Context, fromID, toID uuid.UUID) error {
	for _, src := range f.names[fromID] {
		merged := false
		for _, dst := range f.names[toID] {
			if strings.EqualFold(src.Name, dst.Name) {
				dst.Frequency += src.Frequency
				if src.Confidence > dst.Confidence {
					dst.Confidence = src.Confidence
				}
				merged = true
				break
			}
		}
		if !merged {
			src.ServiceID = toID
			f.names[toID] = append(f.names[toID], src)
		}
	}
	delete(f.names, fromID)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.services, id)
	delete(f.names, id)
	return nil
}

func (f *fakeStore) FlagConflict(_ context.Context, serviceID uuid.UUID, submittedName, reasoning string) error {
	f.conflicts = append(f.conflicts, serviceID.String()+": "+submittedName)
	return nil
}

func (f *fakeStore) RunInTx(_ context.Context, fn func(repository.ServiceRepository) error) error {
	return fn(f)
}
