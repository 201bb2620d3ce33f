package listcache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/catalog"
)

const (
	keyPagePrefix    = "adm:products:page:"
	keyPageSet       = "adm:products:pages"
	keyGen           = "adm:products:gen"
	keyProductPrefix = "adm:product:"
)

// Redis backs the listing cache with a shared Redis instance, so a
// multi-replica deployment sees one cache. Pages carry a TTL; the page
// set is best-effort and pruned on read.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) GetPage(ctx context.Context, key PageKey) (catalog.ListPage, bool, error) {
	raw, err := r.client.Get(ctx, keyPagePrefix+key.String()).Bytes()
	if err == redis.Nil {
		return catalog.ListPage{}, false, nil
	}
	if err != nil {
		return catalog.ListPage{}, false, err
	}
	var page catalog.ListPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return catalog.ListPage{}, false, fmt.Errorf("listcache: corrupt page %s: %w", key, err)
	}
	return page, true, nil
}

func (r *Redis) PageKeys(ctx context.Context) ([]PageKey, error) {
	members, err := r.client.SMembers(ctx, keyPageSet).Result()
	if err != nil {
		return nil, err
	}
	out := make([]PageKey, 0, len(members))
	for _, m := range members {
		k, err := ParsePageKey(m)
		if err != nil {
			r.client.SRem(ctx, keyPageSet, m)
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

func (r *Redis) FillStart(ctx context.Context, key PageKey) (FillToken, error) {
	gen, err := r.currentGen(ctx)
	if err != nil {
		return FillToken{}, err
	}
	return FillToken{Key: key, gen: gen}, nil
}

// FillComplete writes the page only if the generation did not move
// while the fill was in flight; WATCH makes the check-and-set atomic.
func (r *Redis) FillComplete(ctx context.Context, tok FillToken, page catalog.ListPage) (bool, error) {
	raw, err := json.Marshal(page)
	if err != nil {
		return false, err
	}

	stored := false
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		gen, err := genFrom(tx.Get(ctx, keyGen))
		if err != nil {
			return err
		}
		if gen != tok.gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keyPagePrefix+tok.Key.String(), raw, r.ttl)
			pipe.SAdd(ctx, keyPageSet, tok.Key.String())
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, keyGen)
	if err == redis.TxFailedErr {
		return false, nil
	}
	return stored, err
}

func (r *Redis) ReplacePage(ctx context.Context, key PageKey, page catalog.ListPage) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, keyGen)
		pipe.Set(ctx, keyPagePrefix+key.String(), raw, r.ttl)
		pipe.SAdd(ctx, keyPageSet, key.String())
		return nil
	})
	return err
}

func (r *Redis) InvalidateLists(ctx context.Context) error {
	members, err := r.client.SMembers(ctx, keyPageSet).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, keyGen)
		for _, m := range members {
			pipe.Del(ctx, keyPagePrefix+m)
		}
		pipe.Del(ctx, keyPageSet)
		return nil
	})
	return err
}

func (r *Redis) GetProduct(ctx context.Context, id string) (catalog.Product, bool, error) {
	raw, err := r.client.Get(ctx, keyProductPrefix+id).Bytes()
	if err == redis.Nil {
		return catalog.Product{}, false, nil
	}
	if err != nil {
		return catalog.Product{}, false, err
	}
	var p catalog.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return catalog.Product{}, false, fmt.Errorf("listcache: corrupt product %s: %w", id, err)
	}
	return p, true, nil
}

func (r *Redis) SetProduct(ctx context.Context, p catalog.Product) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyProductPrefix+p.ID, raw, r.ttl).Err()
}

func (r *Redis) InvalidateProduct(ctx context.Context, id string) error {
	return r.client.Del(ctx, keyProductPrefix+id).Err()
}

func (r *Redis) currentGen(ctx context.Context) (uint64, error) {
	return genFrom(r.client.Get(ctx, keyGen))
}

func genFrom(cmd *redis.StringCmd) (uint64, error) {
	raw, err := cmd.Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	gen, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("listcache: corrupt generation %q: %w", raw, err)
	}
	return gen, nil
}
