package app

import (
	"context"
	"sync"

	"github.com/caioac96/shortener-api-challenge/internal/logging"
)

// batchDeleteWorkers is the number of concurrent deletion workers.
const batchDeleteWorkers = 5

// BatchDeleteAsync soft-deletes multiple short links belonging to the
// user. The work happens asynchronously; failures are logged and never
// surfaced to the caller.
func (s *ShortenerService) BatchDeleteAsync(userID string, codes []string) {
	go s.processBatchDelete(codes, userID)
}

// processBatchDelete fans the deletions out over a fixed pool of workers
// and drains their results, logging any errors encountered.
func (s *ShortenerService) processBatchDelete(codes []string, userID string) {
	doneCh := make(chan struct{})
	defer close(doneCh)

	inputCh := s.generator(doneCh, codes)
	channels := s.fanOut(doneCh, inputCh, userID)
	resultCh := s.fanIn(doneCh, channels...)

	for err := range resultCh {
		if err != nil {
			logging.Sugar.Errorw("Failed to delete link", "error", err)
		}
	}
}

// generator creates a channel that emits short codes for deletion.
// It stops emitting if doneCh is closed.
func (s *ShortenerService) generator(doneCh chan struct{}, input []string) chan string {
	inputCh := make(chan string)

	go func() {
		defer close(inputCh)

		for _, data := range input {
			select {
			case <-doneCh:
				return
			case inputCh <- data:
			}
		}
	}()

	return inputCh
}

// fanOut starts the worker goroutines and returns their result channels.
func (s *ShortenerService) fanOut(doneCh chan struct{}, inputCh chan string, userID string) []chan error {
	channels := make([]chan error, batchDeleteWorkers)

	for i := 0; i < batchDeleteWorkers; i++ {
		channels[i] = s.deleteWorker(doneCh, inputCh, userID)
	}

	return channels
}

// fanIn merges multiple error channels into a single channel, closing it
// once all workers are done.
func (s *ShortenerService) fanIn(doneCh chan struct{}, resultChs ...chan error) chan error {
	finalCh := make(chan error)

	var wg sync.WaitGroup

	for _, ch := range resultChs {
		chClosure := ch

		wg.Add(1)
		go func() {
			defer wg.Done()

			for err := range chClosure {
				select {
				case <-doneCh:
					return
				case finalCh <- err:
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(finalCh)
	}()

	return finalCh
}

// deleteWorker consumes short codes from inputCh and soft-deletes each
// one, restricted to the user's own links. Results go to the returned
// channel.
func (s *ShortenerService) deleteWorker(doneCh chan struct{}, inputCh chan string, userID string) chan error {
	resultCh := make(chan error)

	go func() {
		defer close(resultCh)
		for code := range inputCh {
			err := s.Store.DeleteOwnedByCode(context.Background(), code, userID)
			select {
			case <-doneCh:
				return
			case resultCh <- err:
			}
		}
	}()

	return resultCh
}
